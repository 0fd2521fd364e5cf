// Package catalog holds the starter book set and the tag input format shared by
// the HTML form and the seed tooling.
package catalog

import (
	"strings"

	"github.com/listenupapp/bookshelf/internal/domain"
)

// TagSeparator separates tags in the form's free-text field.
const TagSeparator = ","

// ParseTags splits a comma-separated tag string, trims each piece and drops
// empty ones. An empty input yields an empty, non-nil slice.
func ParseTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	for _, piece := range strings.Split(raw, TagSeparator) {
		if tag := strings.TrimSpace(piece); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SeedBooks returns fresh copies of the starter books, in insertion order.
func SeedBooks() []*domain.Book {
	return []*domain.Book{
		{
			Title:  "Изучаем Python",
			Author: "Марк Лутц",
			Tags:   []string{"мотивация", "учеба", "развитие", "практика"},
		},
		{
			Title:  "Чистый код",
			Author: "Роберт Мартин",
			Tags:   []string{"профессионализм", "качество", "структура", "лучшие практики"},
		},
		{
			Title:  "Автостопом по галактике",
			Author: "Дуглас Адамс",
			Tags:   []string{"юмор", "приключения", "философия", "абсурд"},
		},
		{
			Title:  "1984",
			Author: "Джордж Оруэлл",
			Tags:   []string{"антиутопия", "политика", "контроль", "размышления"},
		},
		{
			Title:  "Мастер и Маргарита",
			Author: "Михаил Булгаков",
			Tags:   []string{"мистика", "сатира", "добро и зло", "классика"},
		},
		{
			Title:  "Три товарища",
			Author: "Эрих Мария Ремарк",
			Tags:   []string{"дружба", "любовь", "потеря", "меланхолия"},
		},
		{
			Title:  "Маленький принц",
			Author: "Антуан де Сент-Экзюпери",
			Tags:   []string{"философия", "дети", "дружба", "простые истины"},
		},
	}
}
