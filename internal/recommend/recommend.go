// Package recommend picks the single catalog book whose tags best match a
// free-text query.
//
// Matching is substring containment: every query token found anywhere inside
// the book's space-joined, lowercased tag text adds one to the book's score.
// Tags are not tokenized, so "дружб" matches "дружба" and "и" matches any tag
// text containing that letter. Duplicate query tokens count once each.
package recommend

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/listenupapp/bookshelf/internal/domain"
)

// Recommend returns the book with the highest score, or nil when the query is
// blank, the list is empty, or no book scores above zero. Ties go to the book
// that appears first in books.
func Recommend(query string, books []*domain.Book) *domain.Book {
	match, _ := Best(query, books)
	return match
}

// Best is Recommend that also reports the winning score.
func Best(query string, books []*domain.Book) (*domain.Book, int) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil, 0
	}

	var best *domain.Book
	bestScore := 0
	for _, book := range books {
		score := Score(tokens, book)
		if score > bestScore {
			best = book
			bestScore = score
		}
	}
	return best, bestScore
}

// Tokenize lowercases the query and splits it on runs of whitespace.
func Tokenize(query string) []string {
	return strings.FieldsFunc(lower(query), isSpace)
}

// IsBlank reports whether query has no tokens.
func IsBlank(query string) bool {
	return strings.IndexFunc(query, func(r rune) bool { return !isSpace(r) }) < 0
}

// isSpace extends unicode.IsSpace with the ASCII file, group, record and
// unit separators, which also delimit words in free-text queries.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Score counts the tokens contained in the book's joined tag text.
// A nil book or a book without tags scores zero.
func Score(tokens []string, book *domain.Book) int {
	if book == nil || !book.HasTags() {
		return 0
	}

	text := lower(book.TagText())
	score := 0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			score++
		}
	}
	return score
}

// lower applies full Unicode lowercasing. Casers are stateful, so one is
// built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
