package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/google/uuid"
)

const (
	// defaultCategoryName используется, если у кандидата нет категории
	defaultCategoryName = "Imported"

	outcomeSuccess   = "success"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// ImportUseCase оркестрирует импорт товаров поставщиков: одиночный по ссылке и пакетный с учётом задач.
type ImportUseCase struct {
	registry     ProviderRegistry
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	supplierRepo SupplierRepository
	jobRepo      ImportJobRepository
	itemRepo     ImportJobItemRepository
	outboxRepo   OutboxRepository
	fetchCache   FetchCacheRepository
	lockRepo     ImportLockRepository
	imagesInfra  ImagesInfra
	txManager    TxManager
	metrics      ImportMetrics
	logger       logger.Logger
}

func NewImportUC(
	registry ProviderRegistry,
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	supplierRepo SupplierRepository,
	jobRepo ImportJobRepository,
	itemRepo ImportJobItemRepository,
	outboxRepo OutboxRepository,
	fetchCache FetchCacheRepository,
	lockRepo ImportLockRepository,
	imagesInfra ImagesInfra,
	txManager TxManager,
	metrics ImportMetrics,
	logger logger.Logger,
) *ImportUseCase {
	return &ImportUseCase{
		registry:     registry,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		jobRepo:      jobRepo,
		itemRepo:     itemRepo,
		outboxRepo:   outboxRepo,
		fetchCache:   fetchCache,
		lockRepo:     lockRepo,
		imagesInfra:  imagesInfra,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
	}
}

// itemInput — всё, что нужно конвейеру для обработки одного кандидата.
type itemInput struct {
	candidate    *domain.ExternalProduct
	supplierName string
	adapter      ProviderAdapter // nil, если поставщик пакета не сопоставлен с адаптером
	rules        *domain.PricingRules
	mirrorImage  bool
	jobID        *uuid.UUID
}

// ImportByURL импортирует один товар по ссылке. Записи задач не создаются.
func (u *ImportUseCase) ImportByURL(ctx context.Context, req *ImportByURLReq) (*ImportByURLRes, error) {
	const op = "ImportUseCase.ImportByURL"

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, e.Wrap(op, e.ErrMissingURL)
	}

	if err := validateSourceURL(rawURL); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := req.PricingRules.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	adapter, ok := u.registry.DetectFromURL(rawURL)
	if !ok {
		return nil, e.Wrap(op, fmt.Errorf("%w: %s", e.ErrUnsupportedProvider, rawURL))
	}

	candidate, err := u.fetch(ctx, adapter, rawURL)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	supplierName := adapter.Label()
	if candidate.SupplierName == "" {
		candidate.SupplierName = supplierName
	}

	outcome := u.processItem(ctx, itemInput{
		candidate:    candidate,
		supplierName: supplierName,
		adapter:      adapter,
		rules:        req.PricingRules,
		mirrorImage:  true,
	})
	u.observeItem(adapter.Key().String(), candidate, outcome)

	if !outcome.OK() {
		return nil, e.Wrap(op, outcome.Err)
	}

	u.logger.Infof("imported product %d from %s (external_id=%s)", outcome.Product.ID, adapter.Key(), candidate.ExternalID)

	return &ImportByURLRes{Product: NewImportedProduct(candidate, outcome.Product, adapter.Key())}, nil
}

// ImportBatch создаёт задачу и последовательно импортирует каждого кандидата.
// Ошибка отдельной позиции записывается в неё и не прерывает остальные.
func (u *ImportUseCase) ImportBatch(ctx context.Context, req *ImportBatchReq) (*ImportBatchRes, error) {
	const op = "ImportUseCase.ImportBatch"

	label := strings.TrimSpace(req.SupplierLabel)
	if label == "" {
		return nil, e.Wrap(op, e.ErrMissingSupplierLabel)
	}

	if len(req.Products) == 0 {
		return nil, e.Wrap(op, e.ErrNoCandidates)
	}

	if err := req.PricingRules.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Принятый пакет доводится до конца даже при разрыве соединения клиента
	ctx = context.WithoutCancel(ctx)

	job := domain.NewImportJob(req.UserID, label, req.PricingRules)
	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, e.Wrap(op, err)
	}

	adapter := u.adapterForLabel(label)
	provider := label
	if adapter != nil {
		provider = adapter.Key().String()
	}

	outcomes := make([]ItemOutcome, 0, len(req.Products))
	for i := range req.Products {
		candidate := &req.Products[i]
		outcome := u.processJobItem(ctx, job.ID, itemInput{
			candidate:    candidate,
			supplierName: label,
			adapter:      adapter,
			rules:        req.PricingRules,
			jobID:        &job.ID,
		})
		u.observeItem(provider, candidate, outcome)
		outcomes = append(outcomes, outcome)
	}

	success := 0
	for _, o := range outcomes {
		if o.OK() {
			success++
		}
	}

	job.Finish(success, len(outcomes)-success, time.Now().UTC())
	if err := u.jobRepo.Finish(ctx, job); err != nil {
		return nil, e.Wrap(op, e.Mark(e.ErrPersistence, err))
	}
	u.metrics.ObserveJob(string(job.Status))

	u.publishJobFinished(ctx, job)

	u.logger.Infof("import job %s finished: status=%s success=%d failed=%d", job.ID, job.Status, job.SuccessCount, job.FailedCount)

	return NewImportBatchRes(job, outcomes), nil
}

// SearchProvider ищет товары в каталоге поставщика.
func (u *ImportUseCase) SearchProvider(ctx context.Context, req *SearchReq) (*SearchRes, error) {
	const op = "ImportUseCase.SearchProvider"

	if strings.TrimSpace(string(req.Provider)) == "" {
		return nil, e.Wrap(op, e.ErrMissingProvider)
	}

	adapter, ok := u.registry.AdapterByKey(domain.ProviderKey(strings.ToLower(string(req.Provider))))
	if !ok {
		return nil, e.Wrap(op, fmt.Errorf("%w: %s", e.ErrUnsupportedProvider, req.Provider))
	}

	products, err := adapter.Search(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if products == nil {
		products = []domain.ExternalProduct{}
	}

	return &SearchRes{Provider: adapter.Key(), Products: products}, nil
}

// GetJob возвращает задачу импорта вместе с её позициями.
func (u *ImportUseCase) GetJob(ctx context.Context, jobID uuid.UUID) (*GetJobRes, error) {
	const op = "ImportUseCase.GetJob"

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	items, err := u.itemRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &GetJobRes{Job: job, Items: items}, nil
}

// processJobItem оборачивает конвейер записью import_job_items: pending до обработки, итоговый статус после.
func (u *ImportUseCase) processJobItem(ctx context.Context, jobID uuid.UUID, in itemInput) ItemOutcome {
	const op = "ImportUseCase.processJobItem"

	item, err := domain.NewImportJobItem(jobID, in.candidate)
	if err != nil {
		return failed(in.candidate.ExternalID, e.Wrap(op, err))
	}

	if err := u.itemRepo.Create(ctx, item); err != nil {
		u.logger.Warnf("%s: failed to create job item for %s: %v", op, in.candidate.ExternalID, err)
		return failed(in.candidate.ExternalID, e.Wrap(op, err))
	}

	outcome := u.processItem(ctx, in)

	if outcome.OK() {
		err = u.itemRepo.MarkSuccess(ctx, item.ID, outcome.Product.ID)
	} else {
		err = u.itemRepo.MarkFailed(ctx, item.ID, outcome.Reason())
	}
	if err != nil {
		u.logger.Warnf("%s: job item %s left pending: %v", op, item.ID, err)
	}

	return outcome
}

// processItem — общий конвейер позиции: блокировка и проверка дубликата, изображение, цена,
// затем в одной транзакции категория, поставщик, товар и событие outbox.
func (u *ImportUseCase) processItem(ctx context.Context, in itemInput) ItemOutcome {
	const op = "ImportUseCase.processItem"
	c := in.candidate

	if err := validateCandidate(c); err != nil {
		return failed(c.ExternalID, e.Wrap(op, err))
	}

	token, locked, err := u.lockRepo.Acquire(ctx, c.ExternalID)
	switch {
	case err != nil:
		u.logger.Warnf("%s: import lock unavailable for %s, relying on unique index: %v", op, c.ExternalID, err)
	case !locked:
		return failed(c.ExternalID, e.Wrap(op, e.ErrDuplicateItem))
	default:
		defer u.releaseLock(c.ExternalID, token)
	}

	exists, err := u.productRepo.ExistsByExternalID(ctx, c.ExternalID)
	if err != nil {
		return failed(c.ExternalID, e.Wrap(op, err))
	}
	if exists {
		return failed(c.ExternalID, e.Wrap(op, e.ErrDuplicateItem))
	}

	imageURL, uploadedKey := c.ImageURL, ""
	if in.mirrorImage && in.adapter != nil {
		imageURL, uploadedKey = u.mirrorImage(ctx, in.adapter.Key(), c.ImageURL)
	}

	price := domain.ComputePrice(c.Price, in.rules)

	var product *domain.Product
	err = u.txManager.WithinTx(ctx, func(ctx context.Context) error {
		category, err := u.resolveCategory(ctx, c.Category)
		if err != nil {
			return err
		}

		supplier, err := u.resolveSupplier(ctx, in.supplierName, in.adapter)
		if err != nil {
			return err
		}

		product, err = u.productRepo.Create(ctx, domain.NewExternalProduct(
			c.Name,
			c.Description,
			price,
			imageURL,
			category.ID,
			supplier.ID,
			c.Stock(),
			c.ExternalID,
			c.PriceEstimated,
		))
		if err != nil {
			return err
		}

		return u.publishProductImported(ctx, product, supplier.Name, in)
	})
	if err != nil {
		if uploadedKey != "" {
			u.logger.Warnf("Cleaning up mirrored image after failed import. external_id: %s, error: %v", c.ExternalID, err)
			u.imagesInfra.CleanupImages([]string{uploadedKey})
		}

		return failed(c.ExternalID, e.Wrap(op, err))
	}

	if c.PriceEstimated {
		u.logger.Warnf("product %d imported with estimated price, flagged for review (external_id=%s)", product.ID, c.ExternalID)
	}

	return succeeded(c.ExternalID, product)
}

// fetch получает товар по ссылке, сначала заглядывая в кэш разобранных страниц.
func (u *ImportUseCase) fetch(ctx context.Context, adapter ProviderAdapter, rawURL string) (*domain.ExternalProduct, error) {
	cached, err := u.fetchCache.GetExternalProduct(ctx, rawURL)
	if err != nil {
		u.logger.Warnf("fetch cache lookup failed: %v", err)
	}
	if cached != nil {
		u.logger.Debugf("fetch cache hit for %s", rawURL)
		return cached, nil
	}

	product, err := adapter.FetchByURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := u.fetchCache.SetExternalProduct(ctx, rawURL, product); err != nil {
		u.logger.Warnf("fetch cache store failed: %v", err)
	}

	return product, nil
}

// mirrorImage копирует изображение в объектное хранилище. При любой ошибке возвращается исходный URL.
func (u *ImportUseCase) mirrorImage(ctx context.Context, provider domain.ProviderKey, sourceURL string) (string, string) {
	if !strings.HasPrefix(sourceURL, "http://") && !strings.HasPrefix(sourceURL, "https://") {
		return sourceURL, ""
	}

	res, err := u.imagesInfra.MirrorImage(ctx, provider, sourceURL)
	if err != nil {
		u.logger.Warnf("image mirroring failed, keeping source url %s: %v", sourceURL, err)
		return sourceURL, ""
	}

	return res.URL, res.ObjectKey
}

// resolveCategory находит категорию по точному имени или создаёт новую.
func (u *ImportUseCase) resolveCategory(ctx context.Context, label string) (*domain.Category, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		name = defaultCategoryName
	}

	category, err := u.categoryRepo.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return nil, err
	}

	return u.categoryRepo.Create(ctx, domain.NewCategory(name))
}

// resolveSupplier находит поставщика по точному имени или создаёт активного с данными адаптера.
func (u *ImportUseCase) resolveSupplier(ctx context.Context, name string, adapter ProviderAdapter) (*domain.Supplier, error) {
	supplier, err := u.supplierRepo.FindByName(ctx, name)
	if err == nil {
		return supplier, nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return nil, err
	}

	var website, description string
	if adapter != nil {
		website, description = adapter.Website(), adapter.Description()
	}

	return u.supplierRepo.Create(ctx, domain.NewSupplier(name, website, description))
}

func (u *ImportUseCase) publishProductImported(ctx context.Context, product *domain.Product, supplier string, in itemInput) error {
	payload := ProductImportedPayload{
		ProductID:   product.ID,
		ExternalID:  product.ExternalID,
		Supplier:    supplier,
		JobID:       in.jobID,
		Price:       product.Price,
		NeedsReview: product.NeedsReview,
	}
	if in.adapter != nil {
		payload.Provider = in.adapter.Key()
	}

	event, err := NewOutboxEvent(EventProductImported, strconv.FormatInt(product.ID, 10), payload)
	if err != nil {
		return err
	}

	_, err = u.outboxRepo.Create(ctx, event)
	return err
}

// publishJobFinished пишет событие завершения задачи. Ошибка не влияет на результат импорта.
func (u *ImportUseCase) publishJobFinished(ctx context.Context, job *domain.ImportJob) {
	const op = "ImportUseCase.publishJobFinished"

	event, err := NewOutboxEvent(EventImportJobFinished, job.ID.String(), ImportJobFinishedPayload{
		JobID:    job.ID,
		Supplier: job.Supplier,
		Status:   job.Status,
		Success:  job.SuccessCount,
		Failed:   job.FailedCount,
	})
	if err == nil {
		_, err = u.outboxRepo.Create(ctx, event)
	}
	if err != nil {
		u.logger.Warnf("%s: %v", op, err)
	}
}

func (u *ImportUseCase) releaseLock(externalID, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := u.lockRepo.Release(ctx, externalID, token); err != nil {
		u.logger.Warnf("failed to release import lock for %s: %v", externalID, err)
	}
}

// adapterForLabel сопоставляет метку поставщика пакета с адаптером по имени или ключу.
func (u *ImportUseCase) adapterForLabel(label string) ProviderAdapter {
	for _, key := range u.registry.Keys() {
		adapter, ok := u.registry.AdapterByKey(key)
		if !ok {
			continue
		}
		if strings.EqualFold(adapter.Label(), label) || strings.EqualFold(key.String(), label) {
			return adapter
		}
	}

	return nil
}

func (u *ImportUseCase) observeItem(provider string, candidate *domain.ExternalProduct, outcome ItemOutcome) {
	switch {
	case outcome.OK():
		u.metrics.ObserveItem(provider, outcomeSuccess)
		if candidate.PriceEstimated {
			u.metrics.ObservePriceEstimated(provider)
		}
	case errors.Is(outcome.Err, e.ErrDuplicateItem):
		u.metrics.ObserveItem(provider, outcomeDuplicate)
	default:
		u.metrics.ObserveItem(provider, outcomeFailed)
	}
}

// validateSourceURL допускает только абсолютные http(s) ссылки.
func validateSourceURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %s", e.ErrInvalidURL, rawURL)
	}

	return nil
}

// validateCandidate проверяет данные кандидата, пришедшие от клиента или адаптера.
func validateCandidate(c *domain.ExternalProduct) error {
	if strings.TrimSpace(c.ExternalID) == "" {
		return e.ErrCandidateMissingID
	}

	if strings.TrimSpace(c.Name) == "" {
		return e.ErrCandidateMissingName
	}

	if c.Price < 0 || math.IsNaN(c.Price) || math.IsInf(c.Price, 0) {
		return e.ErrCandidateInvalidPrice
	}

	return nil
}
