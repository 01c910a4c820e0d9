package providers

import (
	"context"
	"regexp"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

// /product-detail/Some-Name_1600123456789.html или /product/123
var alibabaProductID = regexp.MustCompile(`(\d+)(?:\.html?)?/?$`)

type AlibabaAdapter struct {
	*catalog
}

func NewAlibabaAdapter(extractor MetadataExtractor, apiKey string, log logger.Logger) *AlibabaAdapter {
	return &AlibabaAdapter{newCatalog(
		domain.ProviderAlibaba,
		"Alibaba",
		"https://www.alibaba.com",
		"Global B2B wholesale marketplace",
		apiKey, extractor, log,
	)}
}

func (a *AlibabaAdapter) DomainFragment() string { return "alibaba.com" }

func (a *AlibabaAdapter) FetchByURL(ctx context.Context, rawURL string) (*domain.ExternalProduct, error) {
	return a.fetch(ctx, rawURL, alibabaProductID)
}
