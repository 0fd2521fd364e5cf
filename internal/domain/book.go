// Package domain contains the core entities of the bookshelf catalog.
package domain

import "strings"

// Book is a catalog entry. Tags are free-text labels used only for recommendations.
type Book struct {
	ID     int64    `json:"id,omitempty" doc:"Storage-assigned identifier"`
	Title  string   `json:"title" validate:"required" doc:"Book title"`
	Author string   `json:"author" validate:"required" doc:"Book author"`
	Tags   []string `json:"tags" doc:"Free-text tags"`
}

// HasTags reports whether the book carries at least one tag.
func (b *Book) HasTags() bool {
	return len(b.Tags) > 0
}

// TagText joins the tags with a single space.
func (b *Book) TagText() string {
	return strings.Join(b.Tags, " ")
}

// NormalizeTags replaces a nil tag list with an empty one so it serializes as [].
func (b *Book) NormalizeTags() {
	if b.Tags == nil {
		b.Tags = []string{}
	}
}
