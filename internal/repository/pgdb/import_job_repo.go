package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ImportJobRepo хранит аудит пакетных импортов в таблице import_jobs.
type ImportJobRepo struct {
	pool *pgxpool.Pool
	conv converter.ImportJobConverter
}

func NewImportJobRepo(pool *pgxpool.Pool, conv converter.ImportJobConverter) *ImportJobRepo {
	return &ImportJobRepo{pool: pool, conv: conv}
}

// Create записывает задачу в статусе running и заполняет CreatedAt.
func (r *ImportJobRepo) Create(ctx context.Context, job *domain.ImportJob) error {
	model, err := r.conv.ToModel(job)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO import_jobs (id, user_id, supplier, status, pricing_rules)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`

	if err := tr.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query,
		model.ID, model.UserID, model.Supplier, model.Status, model.PricingRules,
	).Scan(&job.CreatedAt); err != nil {
		return e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// Finish сохраняет итоговые счётчики и статус. Завершённая задача повторно не обновляется.
func (r *ImportJobRepo) Finish(ctx context.Context, job *domain.ImportJob) error {
	query := `
		UPDATE import_jobs
		SET status = $2, success_count = $3, failed_count = $4, finished_at = $5
		WHERE id = $1 AND finished_at IS NULL
	`

	tag, err := tr.QuerierFromCtx(ctx, r.pool).Exec(ctx, query,
		job.ID, string(job.Status), job.SuccessCount, job.FailedCount, job.FinishedAt,
	)
	if err != nil {
		return e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrJobNotFound)
	}

	return nil
}

func (r *ImportJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	query := `
		SELECT id, user_id, supplier, status, pricing_rules,
		       success_count, failed_count, created_at, finished_at
		FROM import_jobs
		WHERE id = $1
	`

	var model converter.ImportJobModel
	err := tr.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&model.ID, &model.UserID, &model.Supplier, &model.Status, &model.PricingRules,
		&model.SuccessCount, &model.FailedCount, &model.CreatedAt, &model.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrJobNotFound
		}
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	job, err := r.conv.ToEntity(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return job, nil
}
