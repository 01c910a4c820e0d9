package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ImportHandler struct {
	importUsecase usecase.ImportUC
	logger        logger.Logger
}

func NewImportHandler(importUsecase usecase.ImportUC, logger logger.Logger) *ImportHandler {
	return &ImportHandler{importUsecase: importUsecase, logger: logger}
}

type ImportByURLRequest struct {
	URL          string               `json:"url"`
	PricingRules *domain.PricingRules `json:"pricingRules,omitempty"`
}

type ImportByURLResponse struct {
	OK      bool                    `json:"ok"`
	Product usecase.ImportedProduct `json:"product"`
}

type ImportBatchRequest struct {
	SupplierLabel string                   `json:"supplierLabel"`
	Products      []domain.ExternalProduct `json:"products"`
	PricingRules  *domain.PricingRules     `json:"pricingRules,omitempty"`
}

type ImportBatchResponse struct {
	OK      bool                 `json:"ok"`
	JobID   uuid.UUID            `json:"job_id"`
	Status  domain.JobStatus     `json:"status"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Items   []usecase.ItemResult `json:"items"`
}

type SearchResponse struct {
	OK       bool                     `json:"ok"`
	Provider domain.ProviderKey       `json:"provider"`
	Products []domain.ExternalProduct `json:"products"`
}

type JobDTO struct {
	ID           uuid.UUID            `json:"id"`
	UserID       string               `json:"user_id,omitempty"`
	Supplier     string               `json:"supplier"`
	Status       domain.JobStatus     `json:"status"`
	PricingRules *domain.PricingRules `json:"pricing_rules,omitempty"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	CreatedAt    time.Time            `json:"created_at"`
	FinishedAt   *time.Time           `json:"finished_at,omitempty"`
}

type JobItemDTO struct {
	ID         uuid.UUID         `json:"id"`
	ExternalID string            `json:"external_id"`
	Name       string            `json:"name"`
	Status     domain.ItemStatus `json:"status"`
	Error      *string           `json:"error,omitempty"`
	ProductID  *int64            `json:"product_id,omitempty"`
	Raw        any               `json:"raw,omitempty" swaggertype:"object"`
	CreatedAt  time.Time         `json:"created_at"`
}

type JobResponse struct {
	OK    bool         `json:"ok"`
	Job   JobDTO       `json:"job"`
	Items []JobItemDTO `json:"items"`
}

// importByURL
//
//	@Summary		Импорт товара по ссылке
//	@Description	Определяет поставщика по ссылке, разбирает страницу товара и создаёт товар в каталоге
//	@Tags			external-imports
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ImportByURLRequest	true	"Ссылка и правила наценки"
//	@Success		200		{object}	ImportByURLResponse	"Товар импортирован"
//	@Failure		400		{object}	ErrorResponse		"Нет ссылки, неверные правила или неподдерживаемый поставщик"
//	@Failure		401		{object}	ErrorResponse		"Нет прав администратора"
//	@Failure		409		{object}	ErrorResponse		"Товар уже импортирован (расширение контракта: базовый контракт описывает только 400 и 500)"
//	@Failure		500		{object}	ErrorResponse		"Внутренняя ошибка"
//	@Router			/admin/external-imports/import-by-url [post]
func (h *ImportHandler) importByURL(w http.ResponseWriter, r *http.Request) {
	var req ImportByURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.importUsecase.ImportByURL(r.Context(), usecase.NewImportByURLReq(req.URL, req.PricingRules, UserIDFromContext(r.Context())))
	if err != nil {
		h.logError(err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ImportByURLResponse{OK: true, Product: res.Product})
}

// importBatch
//
//	@Summary		Пакетный импорт
//	@Description	Импортирует найденные товары поставщика последовательно и записывает результат каждой позиции в задачу импорта. Ошибки позиций не прерывают пакет.
//	@Tags			external-imports
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ImportBatchRequest	true	"Поставщик, товары и правила наценки"
//	@Success		200		{object}	ImportBatchResponse	"Итог задачи"
//	@Failure		400		{object}	ErrorResponse		"Нет поставщика или товаров"
//	@Failure		401		{object}	ErrorResponse		"Нет прав администратора"
//	@Failure		500		{object}	ErrorResponse		"Внутренняя ошибка"
//	@Router			/admin/external-imports/import-batch [post]
func (h *ImportHandler) importBatch(w http.ResponseWriter, r *http.Request) {
	var req ImportBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.importUsecase.ImportBatch(r.Context(), usecase.NewImportBatchReq(req.SupplierLabel, req.Products, req.PricingRules, UserIDFromContext(r.Context())))
	if err != nil {
		h.logError(err)
		WriteError(w, err)
		return
	}

	h.logger.Infof("import job %s finished: %s, success=%d failed=%d", res.JobID, res.Status, res.Success, res.Failed)
	WriteSuccess(w, http.StatusOK, ImportBatchResponse{
		OK:      true,
		JobID:   res.JobID,
		Status:  res.Status,
		Success: res.Success,
		Failed:  res.Failed,
		Items:   res.Items,
	})
}

// search
//
//	@Summary		Поиск в каталоге поставщика
//	@Tags			external-imports
//	@Produce		json
//	@Security		BearerAuth
//	@Param			provider	query		string	true	"Ключ поставщика"	Enums(alibaba, aliexpress, jumia)
//	@Param			q			query		string	false	"Поисковый запрос"
//	@Param			limit		query		int		false	"Количество результатов (по умолчанию 10, максимум 50)"
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Router			/admin/external-imports/search [get]
func (h *ImportHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, e.Wrap("limit must be a non-negative integer", e.ErrValidation))
			return
		}
		limit = n
	}

	res, err := h.importUsecase.SearchProvider(r.Context(), usecase.NewSearchReq(domain.ProviderKey(q.Get("provider")), q.Get("q"), limit))
	if err != nil {
		h.logError(err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, SearchResponse{OK: true, Provider: res.Provider, Products: res.Products})
}

// getJob
//
//	@Summary		Задача пакетного импорта
//	@Description	Возвращает задачу импорта и результат каждой позиции
//	@Tags			external-imports
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"ID задачи"
//	@Success		200	{object}	JobResponse
//	@Failure		400	{object}	ErrorResponse	"Неверный ID"
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse	"Задача не найдена"
//	@Router			/admin/external-imports/jobs/{id} [get]
func (h *ImportHandler) getJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, e.ErrInvalidJobID)
		return
	}

	res, err := h.importUsecase.GetJob(r.Context(), jobID)
	if err != nil {
		h.logError(err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewJobResponse(res))
}

func (h *ImportHandler) logError(err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "%d", code)
		return
	}
	h.logger.Warnf("%d %s", code, err.Error())
}

func NewJobResponse(res *usecase.GetJobRes) JobResponse {
	job := res.Job
	items := make([]JobItemDTO, 0, len(res.Items))
	for _, it := range res.Items {
		dto := JobItemDTO{
			ID:         it.ID,
			ExternalID: it.ExternalID,
			Name:       it.Name,
			Status:     it.Status,
			Error:      it.Error,
			ProductID:  it.ProductID,
			CreatedAt:  it.CreatedAt,
		}
		if len(it.Raw) > 0 {
			dto.Raw = it.Raw
		}
		items = append(items, dto)
	}

	return JobResponse{
		OK: true,
		Job: JobDTO{
			ID:           job.ID,
			UserID:       job.UserID,
			Supplier:     job.Supplier,
			Status:       job.Status,
			PricingRules: job.PricingRules,
			SuccessCount: job.SuccessCount,
			FailedCount:  job.FailedCount,
			CreatedAt:    job.CreatedAt,
			FinishedAt:   job.FinishedAt,
		},
		Items: items,
	}
}
