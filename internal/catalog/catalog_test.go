package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "whitespace only", raw: "   ", want: []string{}},
		{name: "trims pieces", raw: "x, y ,  z", want: []string{"x", "y", "z"}},
		{name: "drops empty pieces", raw: ",a,, ,b,", want: []string{"a", "b"}},
		{name: "keeps inner spaces", raw: "добро и зло, классика", want: []string{"добро и зло", "классика"}},
		{name: "keeps duplicates", raw: "a,a", want: []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeedBooks(t *testing.T) {
	books := SeedBooks()
	require.Len(t, books, 7)

	assert.Equal(t, "Изучаем Python", books[0].Title)
	assert.Equal(t, "Маленький принц", books[6].Title)
	for _, b := range books {
		assert.Zero(t, b.ID, "seed books are not persisted")
		assert.NotEmpty(t, b.Author)
		assert.Len(t, b.Tags, 4)
	}

	// Each call returns independent copies.
	books[0].Title = "changed"
	assert.Equal(t, "Изучаем Python", SeedBooks()[0].Title)
}
