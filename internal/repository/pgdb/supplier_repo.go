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

// SupplierRepo реализует репозиторий поставщиков поверх PostgreSQL.
type SupplierRepo struct {
	pool *pgxpool.Pool
	conv converter.SupplierConverter
}

func NewSupplierRepo(pool *pgxpool.Pool, conv converter.SupplierConverter) *SupplierRepo {
	return &SupplierRepo{pool: pool, conv: conv}
}

func (s *SupplierRepo) FindByName(ctx context.Context, name string) (*domain.Supplier, error) {
	query := `
		SELECT id, name, status, website, description, created_at
		FROM suppliers
		WHERE name = $1
	`

	var model converter.SupplierModel
	err := tr.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, query, name).Scan(
		&model.ID, &model.Name, &model.Status, &model.Website, &model.Description, &model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrNotFound
		}
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return s.conv.ToEntity(&model), nil
}

// Create создаёт активного поставщика. Существующая запись с тем же именем не изменяется.
func (s *SupplierRepo) Create(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	model := s.conv.ToModel(supplier)

	query := `
		INSERT INTO suppliers (name, status, website, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, status, website, description, created_at;
	`

	err := tr.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, query,
		model.Name, model.Status, model.Website, model.Description,
	).Scan(
		&model.ID, &model.Name, &model.Status, &model.Website, &model.Description, &model.CreatedAt,
	)
	if err != nil {
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return s.conv.ToEntity(model), nil
}
