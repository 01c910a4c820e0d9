package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	return NewExtractor(&cfg.ScraperCfg{
		UserAgent: "SupplierImportsBot/test",
		Timeout:   5 * time.Second,
		RPS:       1000,
		Burst:     1000,
	}, logger.NewNopLogger())
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SupplierImportsBot/test", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractProductPriceMeta(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head>
		<meta property="og:title" content="Ceramic Mug">
		<meta property="product:price:amount" content="49.99">
		<meta property="product:price:currency" content="usd">
	</head><body></body></html>`)

	p, err := newTestExtractor().Extract(context.Background(), srv.URL+"/mug", "Jumia")
	require.NoError(t, err)

	assert.Equal(t, float64(49), p.Price)
	assert.False(t, p.PriceEstimated)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "Ceramic Mug", p.Name)
	assert.Equal(t, "Jumia", p.SupplierName)
	assert.Equal(t, PlaceholderImage, p.ImageURL)
	require.NotNil(t, p.StockQuantity)
	assert.Equal(t, 100, *p.StockQuantity)
	assert.Equal(t, srv.URL+"/mug", p.SourceURL)
}

func TestExtractJSONLDWinsOverMeta(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head>
		<meta property="og:title" content="OG title">
		<meta property="og:image" content="https://cdn.example.com/og.jpg">
		<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product",
			"name":"Smart Watch X2","description":"Water resistant","category":"Wearables",
			"image":["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"],
			"brand":{"@type":"Brand","name":"Acme"},
			"offers":{"@type":"Offer","price":"129.90","priceCurrency":"EUR"}}</script>
	</head></html>`)

	p, err := newTestExtractor().Extract(context.Background(), srv.URL, "AliExpress")
	require.NoError(t, err)

	assert.Equal(t, "Smart Watch X2", p.Name)
	assert.Equal(t, "Water resistant", p.Description)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.ImageURL)
	assert.Equal(t, float64(129), p.Price)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "Wearables", p.Category)
}

func TestExtractJSONLDFollowsDocumentOrder(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head>
		<script type="application/ld+json">{"@type":"Product","name":"Phone",
			"offers":{"@type":"Offer","price":"20.00","priceCurrency":"USD"},
			"isRelatedTo":[{"@type":"Product","name":"Case",
				"image":"https://cdn.example.com/case.jpg",
				"offers":{"price":"5.00","priceCurrency":"EUR"}}],
			"image":"https://cdn.example.com/phone.jpg"}</script>
	</head></html>`)

	p, err := newTestExtractor().Extract(context.Background(), srv.URL, "Jumia")
	require.NoError(t, err)

	assert.Equal(t, "Phone", p.Name)
	assert.Equal(t, float64(20), p.Price)
	assert.False(t, p.PriceEstimated)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "https://cdn.example.com/phone.jpg", p.ImageURL)
}

func TestDecodeJSONLDKeepsKeyOrder(t *testing.T) {
	values, err := decodeJSONLD(`{"name":"Phone","offers":{"price":"20.00"},"isRelatedTo":[{"offers":{"price":"5.00"}}]} {"price":1}`)
	require.NoError(t, err)
	require.Len(t, values, 2)

	obj, ok := values[0].(ldObject)
	require.True(t, ok)
	keys := make([]string, 0, len(obj))
	for _, f := range obj {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"name", "offers", "isRelatedTo"}, keys)

	price, ok := findScalar(values[0], "price")
	require.True(t, ok)
	assert.Equal(t, "20.00", price)

	_, err = decodeJSONLD(`{"name":"broken",`)
	assert.Error(t, err)
}

func TestExtractSkipsMalformedJSONLD(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head>
		<script type="application/ld+json">{ "name": "broken", </script>
		<script type="application/ld+json">[{"@type":"Product","name":"Desk Lamp",
			"image":{"@type":"ImageObject","url":"https://cdn.example.com/lamp.png"},
			"offers":[{"price":19}]}]</script>
		<meta name="twitter:description" content="Warm light">
	</head></html>`)

	p, err := newTestExtractor().Extract(context.Background(), srv.URL, "Alibaba")
	require.NoError(t, err)

	assert.Equal(t, "Desk Lamp", p.Name)
	assert.Equal(t, "Warm light", p.Description)
	assert.Equal(t, "https://cdn.example.com/lamp.png", p.ImageURL)
	assert.Equal(t, float64(19), p.Price)
}

func TestExtractDefaults(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head><title>nothing useful</title></head></html>`)

	p, err := newTestExtractor().Extract(context.Background(), srv.URL+"/x", "Alibaba")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/x", p.Name)
	assert.Equal(t, PlaceholderImage, p.ImageURL)
	assert.Equal(t, float64(FallbackPrice), p.Price)
	assert.True(t, p.PriceEstimated)
}

func TestExtractTwitterFallback(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><head>
		<meta name="twitter:title" content="Tw Title">
		<meta name="twitter:image" content="https://cdn.example.com/tw.jpg">
		<meta property="og:price:amount" content="1,299.00">
	</head></html>`)

	p, err := newTestExtractor().Extract(context.Background(), srv.URL, "Jumia")
	require.NoError(t, err)

	assert.Equal(t, "Tw Title", p.Name)
	assert.Equal(t, "https://cdn.example.com/tw.jpg", p.ImageURL)
	assert.Equal(t, float64(1299), p.Price)
}

func TestExtractNon2xx(t *testing.T) {
	srv := serve(t, http.StatusNotFound, `not here`)

	_, err := newTestExtractor().Extract(context.Background(), srv.URL, "Jumia")
	require.ErrorIs(t, err, e.ErrFetch)
	assert.Contains(t, err.Error(), "404")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"49.99", 49, true},
		{"$1,299.99", 1299, true},
		{"49,99 €", 49, true},
		{"12,000", 12000, true},
		{"1.299,99", 1299, true},
		{"12.500", 12500, true},
		{"1.234.567", 1234567, true},
		{"€ 9,5", 9, true},
		{"KSh 2 450", 2450, true},
		{"", 0, false},
		{"free", 0, false},
		{"0", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
