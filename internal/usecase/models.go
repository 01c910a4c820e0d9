package usecase

import (
	"errors"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/google/uuid"
)

// IMPORT USECASE

// ImportByURLReq — запрос на импорт одного товара по ссылке поставщика.
type ImportByURLReq struct {
	URL          string
	PricingRules *domain.PricingRules
	UserID       string
}

// ImportByURLRes — созданный товар каталога вместе с исходными данными поставщика.
type ImportByURLRes struct {
	Product ImportedProduct
}

// ImportedProduct — ExternalProduct, дополненный итоговой ценой, изображением и поставщиком.
type ImportedProduct struct {
	domain.ExternalProduct
	ID          int64              `json:"id"`
	Cost        float64            `json:"cost"`
	Provider    domain.ProviderKey `json:"provider"`
	NeedsReview bool               `json:"needs_review"`
}

// ImportBatchReq — запрос на пакетный импорт уже найденных кандидатов.
type ImportBatchReq struct {
	SupplierLabel string
	Products      []domain.ExternalProduct
	PricingRules  *domain.PricingRules
	UserID        string
}

// ImportBatchRes — итог пакетного импорта. 200 не означает, что все позиции успешны.
type ImportBatchRes struct {
	JobID   uuid.UUID
	Status  domain.JobStatus
	Success int
	Failed  int
	Items   []ItemResult
}

// ItemResult — итог одной позиции для ответа API.
type ItemResult struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	ProductID  *int64 `json:"product_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SearchReq — поиск в каталоге поставщика.
type SearchReq struct {
	Provider domain.ProviderKey
	Query    string
	Limit    int
}

type SearchRes struct {
	Provider domain.ProviderKey
	Products []domain.ExternalProduct
}

// GetJobRes — задача импорта со всеми позициями.
type GetJobRes struct {
	Job   *domain.ImportJob
	Items []domain.ImportJobItem
}

// ItemOutcome — результат конвейера одной позиции: успех с товаром или ошибка с причиной.
// Ошибки позиций не выходят за пределы цикла пакетного импорта.
type ItemOutcome struct {
	ExternalID string
	Product    *domain.Product
	Err        error
}

func succeeded(externalID string, product *domain.Product) ItemOutcome {
	return ItemOutcome{ExternalID: externalID, Product: product}
}

func failed(externalID string, err error) ItemOutcome {
	return ItemOutcome{ExternalID: externalID, Err: err}
}

func (o ItemOutcome) OK() bool {
	return o.Err == nil
}

// Reason возвращает текст ошибки, который сохраняется в import_job_items.error.
func (o ItemOutcome) Reason() string {
	switch {
	case o.Err == nil:
		return ""
	case errors.Is(o.Err, e.ErrDuplicateItem):
		return e.ErrDuplicateItem.Error()
	default:
		return o.Err.Error()
	}
}

// ToItemResult преобразует исход позиции в DTO ответа.
func (o ItemOutcome) ToItemResult() ItemResult {
	if o.OK() {
		id := o.Product.ID
		return ItemResult{ExternalID: o.ExternalID, Status: string(domain.ItemSuccess), ProductID: &id}
	}

	return ItemResult{ExternalID: o.ExternalID, Status: string(domain.ItemFailed), Error: o.Reason()}
}

// INFRASTRUCTURE

// MirrorImageRes — ссылка на изображение после попытки зеркалирования.
// ObjectKey пустой, если использован исходный URL.
type MirrorImageRes struct {
	URL       string
	ObjectKey string
}

// WriteRawMessageReq — готовое сообщение для Kafka.
type WriteRawMessageReq struct {
	Key       string
	EventType OutboxEventType
	Payload   []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	EventProductImported   OutboxEventType = "product.imported"
	EventImportJobFinished OutboxEventType = "import_job.finished"
)

// OutboxEvent — событие, записанное вместе с изменением данных и позже отправленное в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductImportedPayload — данные события product.imported.
type ProductImportedPayload struct {
	ProductID   int64              `json:"product_id"`
	ExternalID  string             `json:"external_id"`
	Provider    domain.ProviderKey `json:"provider,omitempty"`
	Supplier    string             `json:"supplier"`
	JobID       *uuid.UUID         `json:"job_id,omitempty"`
	Price       int64              `json:"price"`
	NeedsReview bool               `json:"needs_review"`
}

// ImportJobFinishedPayload — данные события import_job.finished.
type ImportJobFinishedPayload struct {
	JobID    uuid.UUID        `json:"job_id"`
	Supplier string           `json:"supplier"`
	Status   domain.JobStatus `json:"status"`
	Success  int              `json:"success"`
	Failed   int              `json:"failed"`
}

// MAPPERS

func NewImportByURLReq(url string, rules *domain.PricingRules, userID string) *ImportByURLReq {
	return &ImportByURLReq{
		URL:          url,
		PricingRules: rules,
		UserID:       userID,
	}
}

func NewImportBatchReq(label string, products []domain.ExternalProduct, rules *domain.PricingRules, userID string) *ImportBatchReq {
	return &ImportBatchReq{
		SupplierLabel: label,
		Products:      products,
		PricingRules:  rules,
		UserID:        userID,
	}
}

func NewSearchReq(provider domain.ProviderKey, query string, limit int) *SearchReq {
	return &SearchReq{
		Provider: provider,
		Query:    query,
		Limit:    limit,
	}
}

func NewImportedProduct(source *domain.ExternalProduct, product *domain.Product, provider domain.ProviderKey) ImportedProduct {
	res := ImportedProduct{
		ExternalProduct: *source,
		ID:              product.ID,
		Cost:            source.Price,
		Provider:        provider,
		NeedsReview:     product.NeedsReview,
	}
	res.Price = float64(product.Price)
	res.ImageURL = product.ImageURL
	res.StockQuantity = &product.StockQuantity

	return res
}

func NewImportBatchRes(job *domain.ImportJob, outcomes []ItemOutcome) *ImportBatchRes {
	items := make([]ItemResult, 0, len(outcomes))
	for _, o := range outcomes {
		items = append(items, o.ToItemResult())
	}

	return &ImportBatchRes{
		JobID:   job.ID,
		Status:  job.Status,
		Success: job.SuccessCount,
		Failed:  job.FailedCount,
		Items:   items,
	}
}

func NewMirrorImageRes(url, objectKey string) *MirrorImageRes {
	return &MirrorImageRes{URL: url, ObjectKey: objectKey}
}

func NewWriteRawMessageReq(key string, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}
