package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	uc       *ImportUseCase
	store    *store
	alibaba  *fakeAdapter
	cache    *fakeCache
	locks    *fakeLocks
	images   *fakeImages
	metrics  *fakeMetrics
	registry *fakeRegistry
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s := newStore()
	alibaba := &fakeAdapter{
		key:      domain.ProviderAlibaba,
		label:    "Alibaba",
		fragment: "alibaba.com",
		product: &domain.ExternalProduct{
			ExternalID:   "1600123456",
			Name:         "Wireless Earbuds",
			Description:  "Bluetooth 5.3",
			Price:        100,
			ImageURL:     "https://img.alibaba.com/earbuds.jpg",
			Category:     "Audio Gear",
			SupplierName: "Alibaba",
		},
	}
	registry := &fakeRegistry{adapters: []*fakeAdapter{
		alibaba,
		{key: domain.ProviderJumia, label: "Jumia", fragment: "jumia."},
	}}

	h := &harness{
		store:    s,
		alibaba:  alibaba,
		cache:    &fakeCache{entries: map[string]*domain.ExternalProduct{}},
		locks:    &fakeLocks{held: map[string]bool{}},
		images:   &fakeImages{},
		metrics:  &fakeMetrics{items: map[string]int{}, jobs: map[string]int{}},
		registry: registry,
	}
	h.uc = NewImportUC(
		registry,
		productRepo{s}, categoryRepo{s}, supplierRepo{s},
		jobRepo{s}, itemRepo{s}, outboxRepo{s},
		h.cache, h.locks, h.images, passTx{}, h.metrics,
		logger.NewNopLogger(),
	)
	return h
}

func candidates(ids ...string) []domain.ExternalProduct {
	out := make([]domain.ExternalProduct, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.ExternalProduct{
			ExternalID: id,
			Name:       "Item " + id,
			Price:      10,
			ImageURL:   "https://img.example.com/" + id + ".jpg",
			Category:   "Home Appliances",
		})
	}
	return out
}

func pct(v float64) *float64 { return &v }

func TestImportByURL(t *testing.T) {
	h := newHarness(t)
	rules := &domain.PricingRules{Strategy: domain.StrategyPercent, Percent: pct(20)}

	res, err := h.uc.ImportByURL(context.Background(),
		NewImportByURLReq("https://www.alibaba.com/product-detail/earbuds_1600123456.html", rules, "admin-1"))
	require.NoError(t, err)

	p := res.Product
	assert.Equal(t, float64(120), p.Price)
	assert.Equal(t, float64(100), p.Cost)
	assert.Equal(t, domain.ProviderAlibaba, p.Provider)
	assert.Equal(t, "https://cdn.example.com/product-images/alibaba/mirrored.jpg", p.ImageURL)
	assert.NotZero(t, p.ID)

	stored := h.store.products["1600123456"]
	require.NotNil(t, stored)
	assert.True(t, stored.IsExternal)
	assert.Equal(t, int64(120), stored.Price)
	assert.Equal(t, domain.DefaultStockQuantity, stored.StockQuantity)

	require.Contains(t, h.store.categories, "Audio Gear")
	assert.Equal(t, "audio-gear", h.store.categories["Audio Gear"].Slug)
	require.Contains(t, h.store.suppliers, "Alibaba")
	assert.Equal(t, domain.SupplierStatusActive, h.store.suppliers["Alibaba"].Status)
	assert.Equal(t, "https://alibaba.com", h.store.suppliers["Alibaba"].Website)

	assert.Empty(t, h.store.jobs, "single-url import creates no job")
	assert.Empty(t, h.store.items)
	require.Len(t, h.store.outbox, 1)
	assert.Equal(t, EventProductImported, h.store.outbox[0].EventType)
	assert.Equal(t, []string{"1600123456"}, h.locks.released)
	assert.Equal(t, 1, h.metrics.items[outcomeSuccess])
}

func TestImportByURLUsesFetchCache(t *testing.T) {
	h := newHarness(t)
	rawURL := "https://www.alibaba.com/product-detail/earbuds_1600123456.html"
	cached := *h.alibaba.product
	h.cache.entries[rawURL] = &cached

	_, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq(rawURL, nil, "admin-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, h.alibaba.fetches)
}

func TestImportByURLUnsupportedHost(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq("https://www.amazon.com/dp/B000123", nil, "admin-1"))
	require.ErrorIs(t, err, e.ErrUnsupportedProvider)
	assert.Empty(t, h.store.products)
	assert.Empty(t, h.store.jobs)
}

func TestImportByURLValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq("   ", nil, ""))
	require.ErrorIs(t, err, e.ErrMissingURL)
	require.ErrorIs(t, err, e.ErrValidation)

	_, err = h.uc.ImportByURL(context.Background(), NewImportByURLReq("ftp://alibaba.com/x", nil, ""))
	require.ErrorIs(t, err, e.ErrInvalidURL)

	_, err = h.uc.ImportByURL(context.Background(),
		NewImportByURLReq("https://alibaba.com/product/1", &domain.PricingRules{Strategy: "double"}, ""))
	require.ErrorIs(t, err, e.ErrInvalidPricingRules)

	assert.Empty(t, h.store.products)
}

func TestImportByURLDuplicate(t *testing.T) {
	h := newHarness(t)
	rawURL := "https://www.alibaba.com/product-detail/earbuds_1600123456.html"

	_, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq(rawURL, nil, ""))
	require.NoError(t, err)

	_, err = h.uc.ImportByURL(context.Background(), NewImportByURLReq(rawURL, nil, ""))
	require.ErrorIs(t, err, e.ErrDuplicateItem)
	assert.Len(t, h.store.products, 1)
	assert.Equal(t, 1, h.metrics.items[outcomeDuplicate])
}

func TestImportByURLFetchFailure(t *testing.T) {
	h := newHarness(t)
	h.alibaba.fetchErr = e.Wrap("scraper", e.ErrFetch)

	_, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq("https://alibaba.com/product/1", nil, ""))
	require.ErrorIs(t, err, e.ErrFetch)
	assert.Empty(t, h.store.products)
}

func TestImportByURLImageFallback(t *testing.T) {
	h := newHarness(t)
	h.images.err = e.ErrFetch

	res, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq("https://alibaba.com/product/1600123456", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, "https://img.alibaba.com/earbuds.jpg", res.Product.ImageURL)
}

func TestImportByURLCleansUpImageOnInsertFailure(t *testing.T) {
	h := newHarness(t)
	h.store.failCreateFor["1600123456"] = e.Mark(e.ErrPersistence, errors.New("connection reset"))

	_, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq("https://alibaba.com/product/1600123456", nil, ""))
	require.ErrorIs(t, err, e.ErrPersistence)
	assert.Equal(t, []string{"alibaba/mirrored.jpg"}, h.images.cleaned)
}

func TestImportByURLEstimatedPriceFlagsReview(t *testing.T) {
	h := newHarness(t)
	h.alibaba.product.PriceEstimated = true

	res, err := h.uc.ImportByURL(context.Background(), NewImportByURLReq("https://alibaba.com/product/1600123456", nil, ""))
	require.NoError(t, err)
	assert.True(t, res.Product.NeedsReview)
	assert.True(t, h.store.products["1600123456"].NeedsReview)
	assert.Equal(t, 1, h.metrics.estimated)
}

func TestImportBatchStatuses(t *testing.T) {
	tests := []struct {
		name       string
		existing   []string
		failing    []string
		ids        []string
		wantStatus domain.JobStatus
		wantOK     int
	}{
		{name: "all succeed", ids: []string{"a", "b", "c"}, wantStatus: domain.JobSuccess, wantOK: 3},
		{name: "some duplicates", existing: []string{"b"}, ids: []string{"a", "b", "c"}, wantStatus: domain.JobPartial, wantOK: 2},
		{name: "write errors", failing: []string{"a"}, ids: []string{"a", "b"}, wantStatus: domain.JobPartial, wantOK: 1},
		{name: "all fail", existing: []string{"a"}, failing: []string{"b"}, ids: []string{"a", "b"}, wantStatus: domain.JobFailed, wantOK: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			for _, id := range tt.existing {
				h.store.products[id] = &domain.Product{ID: 999, ExternalID: id}
			}
			for _, id := range tt.failing {
				h.store.failCreateFor[id] = e.Mark(e.ErrPersistence, errors.New("insert failed"))
			}

			res, err := h.uc.ImportBatch(context.Background(),
				NewImportBatchReq("Alibaba", candidates(tt.ids...), nil, "admin-1"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantOK, res.Success)
			assert.Equal(t, len(tt.ids), res.Success+res.Failed)

			job := h.store.jobs[res.JobID]
			require.NotNil(t, job)
			assert.Equal(t, tt.wantStatus, job.Status)
			assert.NotNil(t, job.FinishedAt)
			assert.Equal(t, "admin-1", job.UserID)

			require.Len(t, h.store.items, len(tt.ids))
			for _, item := range h.store.items {
				assert.NotEqual(t, domain.ItemPending, item.Status)
			}
			assert.Equal(t, 1, h.metrics.jobs[string(tt.wantStatus)])
		})
	}
}

func TestImportBatchDuplicateIsRecordedAndNotInserted(t *testing.T) {
	h := newHarness(t)
	h.store.products["dup-1"] = &domain.Product{ID: 7, ExternalID: "dup-1", Name: "original"}

	res, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Alibaba", candidates("dup-1"), nil, ""))
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, res.Status)

	require.Len(t, h.store.items, 1)
	item := h.store.items[0]
	assert.Equal(t, domain.ItemFailed, item.Status)
	require.NotNil(t, item.Error)
	assert.Equal(t, "Already exists", *item.Error)
	assert.Equal(t, "original", h.store.products["dup-1"].Name)
	assert.Equal(t, "Already exists", res.Items[0].Error)
}

func TestImportBatchSameExternalIDTwice(t *testing.T) {
	h := newHarness(t)

	res, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Jumia", candidates("x", "x"), nil, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, h.store.products, 1)
}

func TestImportBatchAppliesPricingAndSupplierLabel(t *testing.T) {
	h := newHarness(t)
	rules := &domain.PricingRules{Strategy: domain.StrategyFixed, Fixed: pct(5)}

	res, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Jumia", candidates("j1"), rules, ""))
	require.NoError(t, err)
	require.Equal(t, 1, res.Success)

	p := h.store.products["j1"]
	assert.Equal(t, int64(15), p.Price)
	assert.Equal(t, "https://img.example.com/j1.jpg", p.ImageURL, "batch mode never mirrors images")
	require.Contains(t, h.store.suppliers, "Jumia")
	assert.Equal(t, "https://jumia.", h.store.suppliers["Jumia"].Website)

	job := h.store.jobs[res.JobID]
	require.NotNil(t, job.PricingRules)
	assert.Equal(t, domain.StrategyFixed, job.PricingRules.Strategy)

	var types []OutboxEventType
	for _, ev := range h.store.outbox {
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []OutboxEventType{EventProductImported, EventImportJobFinished}, types)
}

func TestImportBatchInvalidCandidateIsIsolated(t *testing.T) {
	h := newHarness(t)
	products := candidates("ok-1")
	products = append(products, domain.ExternalProduct{ExternalID: "", Name: "no id"})
	products = append(products, domain.ExternalProduct{ExternalID: "neg", Name: "negative", Price: -1})

	res, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Acme Wholesale", products, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, domain.JobPartial, res.Status)
	assert.Equal(t, "", h.store.suppliers["Acme Wholesale"].Website)
}

func TestImportBatchValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq(" ", candidates("a"), nil, ""))
	require.ErrorIs(t, err, e.ErrMissingSupplierLabel)

	_, err = h.uc.ImportBatch(context.Background(), NewImportBatchReq("Alibaba", nil, nil, ""))
	require.ErrorIs(t, err, e.ErrNoCandidates)

	assert.Empty(t, h.store.jobs)
}

func TestImportBatchFinishFailure(t *testing.T) {
	h := newHarness(t)
	h.store.failFinish = errors.New("db down")

	_, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Alibaba", candidates("a"), nil, ""))
	require.ErrorIs(t, err, e.ErrPersistence)
}

func TestImportLockHeldCountsAsDuplicate(t *testing.T) {
	h := newHarness(t)
	h.locks.held["busy"] = true

	res, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Alibaba", candidates("busy"), nil, ""))
	require.NoError(t, err)
	assert.Equal(t, "Already exists", res.Items[0].Error)
	assert.Empty(t, h.store.products)
}

func TestImportBatchEmptyCategoryUsesDefault(t *testing.T) {
	h := newHarness(t)
	products := candidates("c1")
	products[0].Category = ""

	_, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Alibaba", products, nil, ""))
	require.NoError(t, err)
	assert.Contains(t, h.store.categories, defaultCategoryName)
}

func TestSearchProvider(t *testing.T) {
	h := newHarness(t)

	res, err := h.uc.SearchProvider(context.Background(), NewSearchReq("ALIBABA", "earbuds", 3))
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderAlibaba, res.Provider)
	assert.Len(t, res.Products, 3)

	res, err = h.uc.SearchProvider(context.Background(), NewSearchReq("alibaba", "  ", 3))
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)

	_, err = h.uc.SearchProvider(context.Background(), NewSearchReq("", "earbuds", 3))
	require.ErrorIs(t, err, e.ErrMissingProvider)

	_, err = h.uc.SearchProvider(context.Background(), NewSearchReq("ebay", "earbuds", 3))
	require.ErrorIs(t, err, e.ErrUnsupportedProvider)
}

func TestGetJob(t *testing.T) {
	h := newHarness(t)

	res, err := h.uc.ImportBatch(context.Background(), NewImportBatchReq("Alibaba", candidates("a", "b"), nil, ""))
	require.NoError(t, err)

	job, err := h.uc.GetJob(context.Background(), res.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSuccess, job.Job.Status)
	assert.Len(t, job.Items, 2)

	_, err = h.uc.GetJob(context.Background(), uuid.New())
	require.ErrorIs(t, err, e.ErrJobNotFound)
}
