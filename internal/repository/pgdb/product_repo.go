package pgdb

import (
	"context"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// ExistsByExternalID проверяет, импортирован ли уже товар с данным external_id.
func (p *ProductRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE is_external AND external_id = $1
		)
	`

	var exists bool
	if err := tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query, externalID).Scan(&exists); err != nil {
		return false, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return exists, nil
}

// Create вставляет импортированный товар. Гонка двух импортов одного external_id
// разрешается частичным уникальным индексом и возвращает e.ErrDuplicateItem.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)

	query := `
		INSERT INTO products (
			name, slug, description, price, image_url, category_id, supplier_id,
			stock_quantity, is_external, external_id, needs_review
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at;
	`

	err := tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query,
		model.Name,
		model.Slug,
		model.Description,
		model.Price,
		model.ImageURL,
		model.CategoryID,
		model.SupplierID,
		model.StockQuantity,
		model.IsExternal,
		model.ExternalID,
		model.NeedsReview,
	).Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if duplicateOn(err, productsExternalIDIndex) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrDuplicateItem)
		}

		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return p.conv.ToEntity(model), nil
}
