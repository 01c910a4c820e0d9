package domain

import "time"

// Category описывает категорию продукта
type Category struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewCategory создаёт категорию, slug выводится из имени без проверки уникальности.
func NewCategory(name string) *Category {
	return &Category{
		Name: name,
		Slug: Slugify(name),
	}
}
