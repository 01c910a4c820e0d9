package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// FindByName ищет категорию по точному совпадению имени.
func (c *CategoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM categories
		WHERE name = $1
	`

	var model converter.CategoryModel
	err := tr.QuerierFromCtx(ctx, c.pool).QueryRow(ctx, query, name).
		Scan(&model.ID, &model.Name, &model.Slug, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrNotFound
		}
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return c.conv.ToEntity(&model), nil
}

// Create идемпотентно создаёт категорию по имени. Если параллельный импорт уже создал
// категорию с таким именем, возвращается существующая запись.
// Совпадение slug у разных имён не разрешается и приводит к ошибке.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (name, slug) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, slug, created_at, updated_at;
	`

	var model converter.CategoryModel
	if err := tr.QuerierFromCtx(ctx, c.pool).QueryRow(ctx, query, category.Name, category.Slug).
		Scan(
			&model.ID, &model.Name, &model.Slug, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return c.conv.ToEntity(&model), nil
}
