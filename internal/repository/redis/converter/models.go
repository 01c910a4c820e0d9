package converter

import "time"

// ExternalProductRedisModel — разобранная страница поставщика в кэше.
type ExternalProductRedisModel struct {
	ExternalID     string    `json:"external_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	ImageURL       string    `json:"image_url"`
	Category       string    `json:"category"`
	SupplierName   string    `json:"supplier_name"`
	StockQuantity  *int      `json:"stock_quantity,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	SourceURL      string    `json:"source_url"`
	PriceEstimated bool      `json:"price_estimated,omitempty"`
	CachedAt       time.Time `json:"cached_at"`
}
