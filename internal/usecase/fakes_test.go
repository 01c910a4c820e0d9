package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/google/uuid"
)

type fakeAdapter struct {
	key      domain.ProviderKey
	label    string
	fragment string
	product  *domain.ExternalProduct
	fetchErr error
	fetches  int
}

func (a *fakeAdapter) Key() domain.ProviderKey { return a.key }
func (a *fakeAdapter) Label() string           { return a.label }
func (a *fakeAdapter) Website() string         { return "https://" + a.fragment }
func (a *fakeAdapter) Description() string     { return a.label + " marketplace" }

func (a *fakeAdapter) Search(_ context.Context, query string, limit int) ([]domain.ExternalProduct, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	out := make([]domain.ExternalProduct, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, domain.ExternalProduct{ExternalID: fmt.Sprintf("%s-%d", a.key, i), Name: query})
	}
	return out, nil
}

func (a *fakeAdapter) FetchByURL(_ context.Context, rawURL string) (*domain.ExternalProduct, error) {
	a.fetches++
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	p := *a.product
	p.SourceURL = rawURL
	return &p, nil
}

type fakeRegistry struct {
	adapters []*fakeAdapter
}

func (r *fakeRegistry) AdapterByKey(key domain.ProviderKey) (ProviderAdapter, bool) {
	for _, a := range r.adapters {
		if a.key == key {
			return a, true
		}
	}
	return nil, false
}

func (r *fakeRegistry) DetectFromURL(rawURL string) (ProviderAdapter, bool) {
	for _, a := range r.adapters {
		if strings.Contains(strings.ToLower(rawURL), a.fragment) {
			return a, true
		}
	}
	return nil, false
}

func (r *fakeRegistry) Keys() []domain.ProviderKey {
	keys := make([]domain.ProviderKey, 0, len(r.adapters))
	for _, a := range r.adapters {
		keys = append(keys, a.key)
	}
	return keys
}

// store — общее in-memory хранилище для всех фейковых репозиториев.
type store struct {
	mu         sync.Mutex
	nextID     int64
	products   map[string]*domain.Product
	categories map[string]*domain.Category
	suppliers  map[string]*domain.Supplier
	jobs       map[uuid.UUID]*domain.ImportJob
	items      []*domain.ImportJobItem
	outbox     []*OutboxEvent

	failCreateFor map[string]error // external_id -> ошибка вставки товара
	failFinish    error
	failCreateJob error
}

func newStore() *store {
	return &store{
		products:      map[string]*domain.Product{},
		categories:    map[string]*domain.Category{},
		suppliers:     map[string]*domain.Supplier{},
		jobs:          map[uuid.UUID]*domain.ImportJob{},
		failCreateFor: map[string]error{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

type productRepo struct{ *store }

func (r productRepo) ExistsByExternalID(_ context.Context, externalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[externalID]
	return ok, nil
}

func (r productRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failCreateFor[p.ExternalID]; err != nil {
		return nil, err
	}
	if _, ok := r.products[p.ExternalID]; ok {
		return nil, e.ErrDuplicateItem
	}
	cp := *p
	cp.ID = r.id()
	r.products[p.ExternalID] = &cp
	return &cp, nil
}

type categoryRepo struct{ *store }

func (r categoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[name]; ok {
		return c, nil
	}
	return nil, e.ErrNotFound
}

func (r categoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.ID = r.id()
	r.categories[c.Name] = &cp
	return &cp, nil
}

type supplierRepo struct{ *store }

func (r supplierRepo) FindByName(_ context.Context, name string) (*domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.suppliers[name]; ok {
		return s, nil
	}
	return nil, e.ErrNotFound
}

func (r supplierRepo) Create(_ context.Context, s *domain.Supplier) (*domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.ID = r.id()
	r.suppliers[s.Name] = &cp
	return &cp, nil
}

type jobRepo struct{ *store }

func (r jobRepo) Create(_ context.Context, job *domain.ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateJob != nil {
		return r.failCreateJob
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r jobRepo) Finish(_ context.Context, job *domain.ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFinish != nil {
		return r.failFinish
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r jobRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		return j, nil
	}
	return nil, e.ErrJobNotFound
}

type itemRepo struct{ *store }

func (r itemRepo) Create(_ context.Context, item *domain.ImportJobItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items = append(r.items, &cp)
	return nil
}

func (r itemRepo) find(id uuid.UUID) *domain.ImportJobItem {
	for _, it := range r.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (r itemRepo) MarkSuccess(_ context.Context, id uuid.UUID, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it := r.find(id)
	it.Status = domain.ItemSuccess
	it.ProductID = &productID
	return nil
}

func (r itemRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it := r.find(id)
	it.Status = domain.ItemFailed
	it.Error = &reason
	return nil
}

func (r itemRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]domain.ImportJobItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ImportJobItem
	for _, it := range r.items {
		if it.JobID == jobID {
			out = append(out, *it)
		}
	}
	return out, nil
}

type outboxRepo struct{ *store }

func (r outboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbox = append(r.outbox, event)
	return event, nil
}

func (r outboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r outboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }
func (r outboxRepo) ReturnToPending(context.Context, int64) error { return nil }

func (r outboxRepo) RequeueStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type fakeCache struct {
	entries map[string]*domain.ExternalProduct
}

func (c *fakeCache) GetExternalProduct(_ context.Context, rawURL string) (*domain.ExternalProduct, error) {
	if p, ok := c.entries[rawURL]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeCache) SetExternalProduct(_ context.Context, rawURL string, p *domain.ExternalProduct) error {
	cp := *p
	c.entries[rawURL] = &cp
	return nil
}

type fakeLocks struct {
	held     map[string]bool
	released []string
}

func (l *fakeLocks) Acquire(_ context.Context, externalID string) (string, bool, error) {
	if l.held[externalID] {
		return "", false, nil
	}
	l.held[externalID] = true
	return "token-" + externalID, true, nil
}

func (l *fakeLocks) Release(_ context.Context, externalID, _ string) error {
	delete(l.held, externalID)
	l.released = append(l.released, externalID)
	return nil
}

type fakeImages struct {
	err     error
	cleaned []string
}

func (f *fakeImages) MirrorImage(_ context.Context, provider domain.ProviderKey, _ string) (*MirrorImageRes, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := string(provider) + "/mirrored.jpg"
	return NewMirrorImageRes("https://cdn.example.com/product-images/"+key, key), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.cleaned = append(f.cleaned, keys...)
}

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMetrics struct {
	items     map[string]int
	jobs      map[string]int
	estimated int
}

func (m *fakeMetrics) ObserveItem(_ string, outcome string) { m.items[outcome]++ }
func (m *fakeMetrics) ObserveJob(status string)            { m.jobs[status]++ }
func (m *fakeMetrics) ObservePriceEstimated(string)        { m.estimated++ }
