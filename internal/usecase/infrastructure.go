package usecase

import (
	"context"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
)

// ProviderAdapter — единый контракт поставщика: поиск и получение товара по ссылке.
type ProviderAdapter interface {
	Key() domain.ProviderKey
	Label() string
	Website() string
	Description() string
	Search(ctx context.Context, query string, limit int) ([]domain.ExternalProduct, error)
	FetchByURL(ctx context.Context, rawURL string) (*domain.ExternalProduct, error)
}

type ProviderRegistry interface {
	AdapterByKey(key domain.ProviderKey) (ProviderAdapter, bool)
	DetectFromURL(rawURL string) (ProviderAdapter, bool)
	Keys() []domain.ProviderKey
}

type ImagesInfra interface {
	MirrorImage(ctx context.Context, provider domain.ProviderKey, sourceURL string) (*MirrorImageRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthInfra проверяет bearer-токен во внешнем auth-сервисе и возвращает id пользователя.
type AuthInfra interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type ImportMetrics interface {
	ObserveItem(provider, outcome string)
	ObserveJob(status string)
	ObservePriceEstimated(provider string)
}
