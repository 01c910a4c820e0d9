package pgdb

import (
	"context"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ImportJobItemRepo хранит результат каждой позиции пакетного импорта.
type ImportJobItemRepo struct {
	pool *pgxpool.Pool
	conv converter.ImportJobItemConverter
}

func NewImportJobItemRepo(pool *pgxpool.Pool, conv converter.ImportJobItemConverter) *ImportJobItemRepo {
	return &ImportJobItemRepo{pool: pool, conv: conv}
}

// Create записывает позицию в статусе pending вместе с исходными данными кандидата.
func (r *ImportJobItemRepo) Create(ctx context.Context, item *domain.ImportJobItem) error {
	model := r.conv.ToModel(item)

	query := `
		INSERT INTO import_job_items (id, job_id, external_id, name, status, raw)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;
	`

	if err := tr.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query,
		model.ID, model.JobID, model.ExternalID, model.Name, model.Status, model.Raw,
	).Scan(&item.CreatedAt); err != nil {
		return e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

func (r *ImportJobItemRepo) MarkSuccess(ctx context.Context, id uuid.UUID, productID int64) error {
	query := `
		UPDATE import_job_items
		SET status = $2, product_id = $3, error = NULL, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tr.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, id, string(domain.ItemSuccess), productID); err != nil {
		return e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

func (r *ImportJobItemRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE import_job_items
		SET status = $2, error = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tr.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, id, string(domain.ItemFailed), reason); err != nil {
		return e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// ListByJob возвращает позиции задачи в порядке их обработки.
func (r *ImportJobItemRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportJobItem, error) {
	query := `
		SELECT id, job_id, external_id, name, status, raw, error, product_id, created_at, updated_at
		FROM import_job_items
		WHERE job_id = $1
		ORDER BY created_at, id
	`

	rows, err := tr.QuerierFromCtx(ctx, r.pool).Query(ctx, query, jobID)
	if err != nil {
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}
	defer rows.Close()

	result := make([]domain.ImportJobItem, 0)
	for rows.Next() {
		var model converter.ImportJobItemModel
		if err := rows.Scan(
			&model.ID, &model.JobID, &model.ExternalID, &model.Name, &model.Status,
			&model.Raw, &model.Error, &model.ProductID, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
		}

		result = append(result, *r.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return result, nil
}
