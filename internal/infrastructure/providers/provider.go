package providers

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/infrastructure/scraper"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	searchCategory     = "General"
)

// Adapter — контракт поставщика, которым пользуется оркестратор импорта.
type Adapter = usecase.ProviderAdapter

// DetectableAdapter — адаптер, который можно найти по хосту ссылки.
type DetectableAdapter interface {
	Adapter
	DomainFragment() string
}

// MetadataExtractor разбирает страницу товара в ExternalProduct.
type MetadataExtractor interface {
	Extract(ctx context.Context, rawURL, supplierLabel string) (*domain.ExternalProduct, error)
}

// catalog — общая часть адаптеров: описание поставщика, поиск-заглушка и получение товара через экстрактор.
type catalog struct {
	key         domain.ProviderKey
	label       string
	website     string
	description string
	extractor   MetadataExtractor
	logger      logger.Logger
}

func newCatalog(key domain.ProviderKey, label, website, description, apiKey string, extractor MetadataExtractor, log logger.Logger) *catalog {
	if apiKey != "" {
		log.Infof("%s: partner API key configured but the partner API is not integrated, using page metadata", key)
	}

	return &catalog{
		key:         key,
		label:       label,
		website:     website,
		description: description,
		extractor:   extractor,
		logger:      log,
	}
}

func (c *catalog) Key() domain.ProviderKey { return c.key }
func (c *catalog) Label() string           { return c.label }
func (c *catalog) Website() string         { return c.website }
func (c *catalog) Description() string     { return c.description }

// Search возвращает детерминированные результаты-заглушки до интеграции API поставщика.
// Пустой запрос даёт пустой список.
func (c *catalog) Search(_ context.Context, query string, limit int) ([]domain.ExternalProduct, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ExternalProduct{}, nil
	}

	switch {
	case limit <= 0:
		limit = defaultSearchLimit
	case limit > maxSearchLimit:
		limit = maxSearchLimit
	}

	slug := domain.Slugify(query)
	results := make([]domain.ExternalProduct, 0, limit)
	for n := 1; n <= limit; n++ {
		id := fmt.Sprintf("%s-%s-%d", c.key, slug, n)
		stock := domain.DefaultStockQuantity
		results = append(results, domain.ExternalProduct{
			ExternalID:    id,
			Name:          fmt.Sprintf("%s (%s #%d)", query, c.label, n),
			Description:   fmt.Sprintf("%s result for %q", c.label, query),
			Price:         placeholderPrice(query, n),
			ImageURL:      scraper.PlaceholderImage,
			Category:      searchCategory,
			SupplierName:  c.label,
			StockQuantity: &stock,
			SourceURL:     fmt.Sprintf("%s/search?q=%s#%d", c.website, url.QueryEscape(query), n),
		})
	}

	return results, nil
}

// fetch получает метаданные страницы и присваивает ExternalID, извлечённый из ссылки.
func (c *catalog) fetch(ctx context.Context, rawURL string, pattern *regexp.Regexp) (*domain.ExternalProduct, error) {
	op := fmt.Sprintf("%sAdapter.FetchByURL", c.key)

	product, err := c.extractor.Extract(ctx, rawURL, c.label)
	if err != nil {
		if !errors.Is(err, e.ErrFetch) {
			err = e.Mark(e.ErrFetch, err)
		}
		return nil, e.Wrap(op, err)
	}

	product.ExternalID = c.externalID(rawURL, pattern)
	if product.SupplierName == "" {
		product.SupplierName = c.label
	}

	return product, nil
}

// externalID возвращает "<key>-<id>" по шаблону пути или ссылку без query и fragment.
func (c *catalog) externalID(rawURL string, pattern *regexp.Regexp) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if m := pattern.FindStringSubmatch(parsed.Path); len(m) == 2 {
		return fmt.Sprintf("%s-%s", c.key, m[1])
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

// placeholderPrice выводит стабильную цену из запроса и номера результата.
func placeholderPrice(query string, n int) float64 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s#%d", strings.ToLower(query), n)
	cents := 500 + h.Sum32()%49500
	return float64(cents) / 100
}
