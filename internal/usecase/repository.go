package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/google/uuid"
)

type ProductRepository interface {
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

// CategoryRepository ищет категории по точному имени. FindByName возвращает e.ErrNotFound при отсутствии.
type CategoryRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type SupplierRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Supplier, error)
	Create(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
}

type ImportJobRepository interface {
	Create(ctx context.Context, job *domain.ImportJob) error
	Finish(ctx context.Context, job *domain.ImportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
}

type ImportJobItemRepository interface {
	Create(ctx context.Context, item *domain.ImportJobItem) error
	MarkSuccess(ctx context.Context, id uuid.UUID, productID int64) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportJobItem, error)
}

// OutboxRepository — очередь событий для Kafka. Create пишет в текущей транзакции, если она есть.
type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReturnToPending(ctx context.Context, id int64) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ProfileRepository interface {
	GetRole(ctx context.Context, userID string) (string, error)
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// FetchCacheRepository кэширует разобранные страницы поставщиков. Промах — (nil, nil).
type FetchCacheRepository interface {
	GetExternalProduct(ctx context.Context, rawURL string) (*domain.ExternalProduct, error)
	SetExternalProduct(ctx context.Context, rawURL string, product *domain.ExternalProduct) error
}

// ImportLockRepository — короткоживущая блокировка импорта одного external_id.
type ImportLockRepository interface {
	Acquire(ctx context.Context, externalID string) (token string, acquired bool, err error)
	Release(ctx context.Context, externalID, token string) error
}
