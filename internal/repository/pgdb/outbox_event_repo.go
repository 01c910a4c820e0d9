package pgdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxChannel — канал LISTEN/NOTIFY, на который подписан outbox-воркер.
const OutboxChannel = "outbox_pending"

// OutboxEventRepo хранит события для Kafka в таблице outbox_events.
type OutboxEventRepo struct {
	pool *pgxpool.Pool
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool: pool,
		conv: conv,
	}
}

// Create пишет событие в текущей транзакции, если она есть, и будит outbox-воркер через NOTIFY.
// NOTIFY внутри транзакции доставляется только после коммита.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	q := tr.QuerierFromCtx(ctx, o.pool)

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			aggregate_id,
			payload,
			status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`

	if err := q.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.AggregateID,
		model.Payload,
		model.Status,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, fmt.Errorf("%s: event with id %s already exists", whereami.WhereAmI(), event.EventID)
		}

		return nil, e.Mark(e.ErrPersistence, fmt.Errorf("%s: failed to insert event: %w", whereami.WhereAmI(), err))
	}

	if _, err := q.Exec(ctx, "NOTIFY "+OutboxChannel+";"); err != nil {
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing забирает пачку pending-событий в порядке создания и переводит их в processing.
// SKIP LOCKED позволяет нескольким воркерам работать параллельно.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at, id
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, event_type, aggregate_id, payload, status, created_at, processed_at
	`

	var models []*converter.OutboxEventModel
	err := pgx.BeginFunc(ctx, o.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, usecase.Processing, usecase.Pending, limit)
		if err != nil {
			return fmt.Errorf("failed to query pending events: %w", err)
		}

		models, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*converter.OutboxEventModel, error) {
			var model converter.OutboxEventModel
			err := row.Scan(
				&model.ID,
				&model.EventID,
				&model.EventType,
				&model.AggregateID,
				&model.Payload,
				&model.Status,
				&model.CreatedAt,
				&model.ProcessedAt,
			)
			return &model, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan events: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	// UPDATE ... RETURNING не сохраняет порядок подзапроса.
	sort.Slice(models, func(i, j int) bool {
		if models[i].CreatedAt.Equal(models[j].CreatedAt) {
			return models[i].ID < models[j].ID
		}
		return models[i].CreatedAt.Before(models[j].CreatedAt)
	})

	return o.conv.ToArrEntity(models), nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`

	// Ноль затронутых строк: событие уже обработано другим воркером.
	if _, err := o.pool.Exec(ctx, query, usecase.Processed, id, usecase.Processing); err != nil {
		return e.Mark(e.ErrPersistence, fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err))
	}

	return nil
}

// ReturnToPending возвращает событие в очередь после неудачной отправки.
func (o *OutboxEventRepo) ReturnToPending(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.Pending, id, usecase.Processing); err != nil {
		return e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// RequeueStale возвращает в очередь события, которые застряли в processing дольше olderThan,
// например после падения воркера между захватом и отправкой.
func (o *OutboxEventRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE status = $2 AND processing_started_at < NOW() - make_interval(secs => $3)
	`

	tag, err := o.pool.Exec(ctx, query, usecase.Pending, usecase.Processing, olderThan.Seconds())
	if err != nil {
		return 0, e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	return tag.RowsAffected(), nil
}
