package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/metrics"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "admin-token"

type stubAuth struct{}

func (stubAuth) AuthorizeAdmin(_ context.Context, token string) (string, error) {
	switch token {
	case adminToken:
		return "admin-1", nil
	case "broken":
		return "", e.Mark(e.ErrPersistence, fmt.Errorf("db down"))
	default:
		return "", e.Wrap("AuthUseCase.AuthorizeAdmin", e.ErrUnauthorized)
	}
}

type stubImportUC struct {
	byURLReq *usecase.ImportByURLReq
	batchReq *usecase.ImportBatchReq
	err      error
	job      *usecase.GetJobRes
}

func (s *stubImportUC) ImportByURL(_ context.Context, req *usecase.ImportByURLReq) (*usecase.ImportByURLRes, error) {
	s.byURLReq = req
	if s.err != nil {
		return nil, s.err
	}
	stock := 100
	return &usecase.ImportByURLRes{Product: usecase.ImportedProduct{
		ExternalProduct: domain.ExternalProduct{
			ExternalID:    "jumia-123",
			Name:          "Smart Watch",
			Price:         120,
			ImageURL:      "https://cdn.example.com/product-images/jumia/1.jpg",
			StockQuantity: &stock,
		},
		ID:       7,
		Cost:     100,
		Provider: domain.ProviderJumia,
	}}, nil
}

func (s *stubImportUC) ImportBatch(_ context.Context, req *usecase.ImportBatchReq) (*usecase.ImportBatchRes, error) {
	s.batchReq = req
	if s.err != nil {
		return nil, s.err
	}
	id := int64(9)
	return &usecase.ImportBatchRes{
		JobID:   uuid.MustParse("0b7c1f5e-9c3a-4a55-8c1d-2d7a3b1e4f60"),
		Status:  domain.JobPartial,
		Success: 1,
		Failed:  1,
		Items: []usecase.ItemResult{
			{ExternalID: "a", Status: "success", ProductID: &id},
			{ExternalID: "b", Status: "failed", Error: "Already exists"},
		},
	}, nil
}

func (s *stubImportUC) SearchProvider(_ context.Context, req *usecase.SearchReq) (*usecase.SearchRes, error) {
	if req.Provider == "" {
		return nil, e.Wrap("ImportUseCase.SearchProvider", e.ErrMissingProvider)
	}
	return &usecase.SearchRes{Provider: req.Provider, Products: []domain.ExternalProduct{{ExternalID: "x", Name: req.Query}}}, nil
}

func (s *stubImportUC) GetJob(_ context.Context, id uuid.UUID) (*usecase.GetJobRes, error) {
	if s.job == nil || s.job.Job.ID != id {
		return nil, e.Wrap("ImportUseCase.GetJob", e.ErrJobNotFound)
	}
	return s.job, nil
}

func newTestRouter(uc usecase.ImportUC) http.Handler {
	mux := chi.NewRouter()
	r := NewRouter(mux, &cfg.HTTPConfig{
		RequestTimeout: time.Minute,
		SwaggerURL:     "/swagger/doc.json",
		AllowedOrigins: []string{"*"},
	}, metrics.New(), logger.NewNopLogger())
	r.Init(uc, stubAuth{})
	return mux
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestImportByURL(t *testing.T) {
	uc := &stubImportUC{}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/admin/external-imports/import-by-url", adminToken,
		`{"url":"https://www.jumia.com.ng/watch-123.html","pricingRules":{"strategy":"percent","percent":20}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])

	product := body["product"].(map[string]any)
	assert.Equal(t, "jumia-123", product["external_id"])
	assert.Equal(t, float64(120), product["price"])
	assert.Equal(t, float64(100), product["cost"])
	assert.Equal(t, "jumia", product["provider"])
	assert.Equal(t, float64(7), product["id"])
	assert.Equal(t, "https://cdn.example.com/product-images/jumia/1.jpg", product["image_url"])

	require.NotNil(t, uc.byURLReq)
	assert.Equal(t, "admin-1", uc.byURLReq.UserID)
	require.NotNil(t, uc.byURLReq.PricingRules)
	assert.Equal(t, domain.StrategyPercent, uc.byURLReq.PricingRules.Strategy)
}

func TestImportByURLErrors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		body    string
		ucErr   error
		code    int
		message string
	}{
		{name: "no token", body: `{"url":"x"}`, code: http.StatusUnauthorized, message: "unauthorized"},
		{name: "not admin", token: "user-token", body: `{"url":"x"}`, code: http.StatusUnauthorized, message: "unauthorized"},
		{name: "auth backend failure", token: "broken", body: `{"url":"x"}`, code: http.StatusInternalServerError, message: "internal server error"},
		{name: "bad json", token: adminToken, body: `{"url":`, code: http.StatusBadRequest},
		{name: "missing url", token: adminToken, body: `{}`, ucErr: e.Wrap("ImportUseCase.ImportByURL", e.ErrMissingURL), code: http.StatusBadRequest, message: "validation error: url is required"},
		{name: "unsupported provider", token: adminToken, body: `{"url":"https://example.com/x"}`, ucErr: e.Wrap("ImportUseCase.ImportByURL", fmt.Errorf("%w: example.com", e.ErrUnsupportedProvider)), code: http.StatusBadRequest, message: "unsupported provider: example.com"},
		{name: "duplicate", token: adminToken, body: `{"url":"https://www.jumia.com.ng/watch-1.html"}`, ucErr: e.Wrap("op", e.ErrDuplicateItem), code: http.StatusConflict, message: "Already exists"},
		{name: "fetch failure", token: adminToken, body: `{"url":"https://www.jumia.com.ng/watch-1.html"}`, ucErr: e.Mark(e.ErrFetch, fmt.Errorf("GET: status 503")), code: http.StatusInternalServerError, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&stubImportUC{err: tt.ucErr})

			rec := do(t, h, http.MethodPost, "/api/admin/external-imports/import-by-url", tt.token, tt.body)

			require.Equal(t, tt.code, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, float64(tt.code), body["code"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
}

func TestImportByURLRejectsNonJSON(t *testing.T) {
	h := newTestRouter(&stubImportUC{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/external-imports/import-by-url", strings.NewReader("url=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestImportBatch(t *testing.T) {
	uc := &stubImportUC{}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodPost, "/api/admin/external-imports/import-batch", adminToken,
		`{"supplierLabel":"Jumia","products":[{"external_id":"a","name":"A","price":10},{"external_id":"b","name":"B","price":5}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "0b7c1f5e-9c3a-4a55-8c1d-2d7a3b1e4f60", body["job_id"])
	assert.Equal(t, float64(1), body["success"])
	assert.Equal(t, float64(1), body["failed"])
	assert.Equal(t, "partial", body["status"])

	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Already exists", items[1].(map[string]any)["error"])

	require.NotNil(t, uc.batchReq)
	assert.Equal(t, "Jumia", uc.batchReq.SupplierLabel)
	assert.Len(t, uc.batchReq.Products, 2)
	assert.Nil(t, uc.batchReq.PricingRules)
}

func TestImportBatchValidation(t *testing.T) {
	h := newTestRouter(&stubImportUC{err: e.Wrap("ImportUseCase.ImportBatch", e.ErrNoCandidates)})

	rec := do(t, h, http.MethodPost, "/api/admin/external-imports/import-batch", adminToken, `{"supplierLabel":"Jumia","products":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation error: products are required", decode(t, rec)["error"])
}

func TestSearch(t *testing.T) {
	h := newTestRouter(&stubImportUC{})

	rec := do(t, h, http.MethodGet, "/api/admin/external-imports/search?provider=jumia&q=watch&limit=3", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "jumia", body["provider"])
	assert.Len(t, body["products"], 1)

	rec = do(t, h, http.MethodGet, "/api/admin/external-imports/search?provider=jumia&limit=abc", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/admin/external-imports/search?q=watch", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJob(t *testing.T) {
	jobID := uuid.New()
	reason := "Already exists"
	finished := time.Now()
	uc := &stubImportUC{job: &usecase.GetJobRes{
		Job: &domain.ImportJob{ID: jobID, Supplier: "Jumia", Status: domain.JobFailed, FailedCount: 1, FinishedAt: &finished},
		Items: []domain.ImportJobItem{
			{ID: uuid.New(), JobID: jobID, ExternalID: "a", Status: domain.ItemFailed, Error: &reason, Raw: json.RawMessage(`{"external_id":"a"}`)},
		},
	}}
	h := newTestRouter(uc)

	rec := do(t, h, http.MethodGet, "/api/admin/external-imports/jobs/"+jobID.String(), adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	job := body["job"].(map[string]any)
	assert.Equal(t, "failed", job["status"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Already exists", item["error"])
	assert.Equal(t, "a", item["raw"].(map[string]any)["external_id"])

	rec = do(t, h, http.MethodGet, "/api/admin/external-imports/jobs/"+uuid.NewString(), adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec)["error"])

	rec = do(t, h, http.MethodGet, "/api/admin/external-imports/jobs/not-a-uuid", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthzIsPublic(t *testing.T) {
	rec := do(t, newTestRouter(&stubImportUC{}), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", bearerToken(req))

	req.Header.Set("Authorization", "bearer abc ")
	assert.Equal(t, "abc", bearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", bearerToken(req))
}
