package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const (
	// PlaceholderImage подставляется, если на странице нет изображения
	PlaceholderImage = "/placeholder.svg"
	// FallbackPrice подставляется, если на странице нет цены. Такой товар помечается PriceEstimated.
	FallbackPrice = 1000
)

// Extractor извлекает метаданные товара из HTML-страницы: JSON-LD, Open Graph, Twitter и product:price.
type Extractor struct {
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    logger.Logger
}

func NewExtractor(cfg *cfg.ScraperCfg, logger logger.Logger) *Extractor {
	return &Extractor{
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		logger:    logger,
	}
}

// page — сырые сигналы, собранные со страницы.
type page struct {
	jsonLD []any
	meta   map[string]string
}

// Extract загружает страницу и собирает ExternalProduct. Ответ не 2xx возвращает ошибку e.ErrFetch.
// Отсутствующие поля заполняются значениями по умолчанию, ошибкой это не считается.
func (x *Extractor) Extract(ctx context.Context, rawURL, supplierLabel string) (*domain.ExternalProduct, error) {
	const op = "Extractor.Extract"

	if err := x.limiter.Wait(ctx); err != nil {
		return nil, e.Wrap(op, e.Mark(e.ErrFetch, err))
	}

	p, err := x.load(ctx, rawURL)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return p.toExternalProduct(rawURL, supplierLabel), nil
}

func (x *Extractor) load(ctx context.Context, rawURL string) (*page, error) {
	c := colly.NewCollector(
		colly.UserAgent(x.userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(x.timeout)

	p := &page{meta: make(map[string]string)}

	c.OnHTML(`script[type="application/ld+json"]`, func(el *colly.HTMLElement) {
		values, err := decodeJSONLD(el.Text)
		if err != nil {
			x.logger.Debugf("skipping malformed JSON-LD on %s: %v", rawURL, err)
			return
		}
		p.jsonLD = append(p.jsonLD, values...)
	})

	c.OnHTML("meta[content]", func(el *colly.HTMLElement) {
		key := el.Attr("property")
		if key == "" {
			key = el.Attr("name")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if _, seen := p.meta[key]; !seen {
			p.meta[key] = strings.TrimSpace(el.Attr("content"))
		}
	})

	status := 0
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		if status != 0 {
			return nil, e.Mark(e.ErrFetch, fmt.Errorf("GET %s: status %d", rawURL, status))
		}
		return nil, e.Mark(e.ErrFetch, fmt.Errorf("GET %s: %w", rawURL, err))
	}

	return p, nil
}

func (p *page) toExternalProduct(rawURL, supplierLabel string) *domain.ExternalProduct {
	name, _ := firstNonEmpty(p.ldString("name"), p.metaValue("og:title"), p.metaValue("twitter:title"))
	description, _ := firstNonEmpty(p.ldString("description"), p.metaValue("og:description"), p.metaValue("twitter:description"))
	image, _ := firstNonEmpty(p.ldImage(), p.metaValue("og:image"), p.metaValue("twitter:image"))
	priceRaw, _ := firstNonEmpty(p.ldString("price"), p.metaValue("product:price:amount"), p.metaValue("og:price:amount"))
	currency, _ := firstNonEmpty(p.ldString("priceCurrency"), p.metaValue("product:price:currency"), p.metaValue("og:price:currency"))
	category, _ := firstNonEmpty(p.ldString("category"))

	if name == "" {
		name = rawURL
	}
	if image == "" {
		image = PlaceholderImage
	}

	price, ok := parsePrice(priceRaw)
	if !ok {
		price = FallbackPrice
	}

	stock := domain.DefaultStockQuantity

	return &domain.ExternalProduct{
		ExternalID:     rawURL,
		Name:           name,
		Description:    description,
		Price:          float64(price),
		ImageURL:       image,
		Category:       category,
		SupplierName:   supplierLabel,
		StockQuantity:  &stock,
		Currency:       strings.ToUpper(currency),
		SourceURL:      rawURL,
		PriceEstimated: !ok,
	}
}

// source — один шаг цепочки извлечения.
type source func() (string, bool)

// firstNonEmpty возвращает первое непустое значение из цепочки.
func firstNonEmpty(sources ...source) (string, bool) {
	for _, s := range sources {
		if v, ok := s(); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (p *page) metaValue(key string) source {
	return func() (string, bool) {
		v, ok := p.meta[key]
		return v, ok && v != ""
	}
}

func (p *page) ldString(key string) source {
	return func() (string, bool) {
		for _, doc := range p.jsonLD {
			if v, ok := findScalar(doc, key); ok {
				return v, true
			}
		}
		return "", false
	}
}

func (p *page) ldImage() source {
	return func() (string, bool) {
		for _, doc := range p.jsonLD {
			if v, ok := findImage(doc); ok {
				return v, true
			}
		}
		return "", false
	}
}
