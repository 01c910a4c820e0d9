package converter

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID            int64      `db:"id"`
	Name          string     `db:"name"`
	Slug          string     `db:"slug"`
	Description   string     `db:"description"`
	Price         int64      `db:"price"`
	ImageURL      string     `db:"image_url"`
	CategoryID    int64      `db:"category_id"`
	SupplierID    int64      `db:"supplier_id"`
	StockQuantity int        `db:"stock_quantity"`
	IsExternal    bool       `db:"is_external"`
	ExternalID    *string    `db:"external_id"`
	NeedsReview   bool       `db:"needs_review"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Slug      string     `db:"slug"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// SupplierModel представляет запись таблицы suppliers в PostgreSQL.
type SupplierModel struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Status      string    `db:"status"`
	Website     *string   `db:"website"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// ImportJobModel представляет запись таблицы import_jobs в PostgreSQL.
type ImportJobModel struct {
	ID           uuid.UUID  `db:"id"`
	UserID       *string    `db:"user_id"`
	Supplier     string     `db:"supplier"`
	Status       string     `db:"status"`
	PricingRules []byte     `db:"pricing_rules"`
	SuccessCount int        `db:"success_count"`
	FailedCount  int        `db:"failed_count"`
	CreatedAt    time.Time  `db:"created_at"`
	FinishedAt   *time.Time `db:"finished_at"`
}

// ImportJobItemModel представляет запись таблицы import_job_items в PostgreSQL.
type ImportJobItemModel struct {
	ID         uuid.UUID  `db:"id"`
	JobID      uuid.UUID  `db:"job_id"`
	ExternalID string     `db:"external_id"`
	Name       string     `db:"name"`
	Status     string     `db:"status"`
	Raw        []byte     `db:"raw"`
	Error      *string    `db:"error"`
	ProductID  *int64     `db:"product_id"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
