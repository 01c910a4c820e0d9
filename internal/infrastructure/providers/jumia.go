package providers

import (
	"context"
	"regexp"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

// /some-product-name-123456789.html
var jumiaSKU = regexp.MustCompile(`-(\d+)\.html?$`)

type JumiaAdapter struct {
	*catalog
}

func NewJumiaAdapter(extractor MetadataExtractor, apiKey string, log logger.Logger) *JumiaAdapter {
	return &JumiaAdapter{newCatalog(
		domain.ProviderJumia,
		"Jumia",
		"https://www.jumia.com",
		"African e-commerce marketplace",
		apiKey, extractor, log,
	)}
}

// DomainFragment покрывает страновые домены jumia.co.ke, jumia.com.ng и другие.
func (a *JumiaAdapter) DomainFragment() string { return "jumia." }

func (a *JumiaAdapter) FetchByURL(ctx context.Context, rawURL string) (*domain.ExternalProduct, error) {
	return a.fetch(ctx, rawURL, jumiaSKU)
}
