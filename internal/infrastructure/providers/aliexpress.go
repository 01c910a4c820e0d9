package providers

import (
	"context"
	"regexp"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

var aliexpressItemID = regexp.MustCompile(`/item/(\d+)\.html?$`)

type AliExpressAdapter struct {
	*catalog
}

func NewAliExpressAdapter(extractor MetadataExtractor, apiKey string, log logger.Logger) *AliExpressAdapter {
	return &AliExpressAdapter{newCatalog(
		domain.ProviderAliExpress,
		"AliExpress",
		"https://www.aliexpress.com",
		"Retail marketplace for direct-from-manufacturer goods",
		apiKey, extractor, log,
	)}
}

// DomainFragment покрывает региональные домены aliexpress.com, aliexpress.ru, aliexpress.us.
func (a *AliExpressAdapter) DomainFragment() string { return "aliexpress." }

func (a *AliExpressAdapter) FetchByURL(ctx context.Context, rawURL string) (*domain.ExternalProduct, error) {
	return a.fetch(ctx, rawURL, aliexpressItemID)
}
