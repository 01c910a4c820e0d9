package domain

// ProviderKey идентифицирует поддерживаемого внешнего поставщика
type ProviderKey string

const (
	ProviderAlibaba    ProviderKey = "alibaba"
	ProviderAliExpress ProviderKey = "aliexpress"
	ProviderJumia      ProviderKey = "jumia"
)

func (k ProviderKey) String() string {
	return string(k)
}

// ExternalProduct — нормализованное представление товара поставщика до импорта в каталог.
// Не сохраняется как есть, используется только оркестратором импорта.
type ExternalProduct struct {
	ExternalID     string  `json:"external_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"` // Закупочная цена поставщика
	ImageURL       string  `json:"image_url"`
	Category       string  `json:"category"`
	SupplierName   string  `json:"supplier_name"`
	StockQuantity  *int    `json:"stock_quantity,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	SourceURL      string  `json:"source_url,omitempty"`
	PriceEstimated bool    `json:"price_estimated,omitempty"`
}

// DefaultStockQuantity подставляется, когда остаток неизвестен
const DefaultStockQuantity = 100

// Stock возвращает остаток товара или значение по умолчанию.
func (p *ExternalProduct) Stock() int {
	if p.StockQuantity == nil || *p.StockQuantity < 0 {
		return DefaultStockQuantity
	}
	return *p.StockQuantity
}
