package http

import (
	"net/http"

	_ "github.com/DRSN-tech/supplier-imports/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/internal/metrics"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router  *chi.Mux
	cfg     *cfg.HTTPConfig
	metrics *metrics.Metrics
	logger  logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, metrics *metrics.Metrics, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, metrics: metrics, logger: logger}
}

func (r *Router) Init(importUC usecase.ImportUC, authUC usecase.AuthUC) {
	r.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		cors.New(cors.Options{
			AllowedOrigins: r.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}).Handler,
		r.metrics.Middleware,
	)

	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.router.Handle("/metrics", r.metrics.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.SwaggerURL),
	))

	r.router.Route("/api/admin", func(admin chi.Router) {
		admin.Use(
			middleware.Timeout(r.cfg.RequestTimeout),
			AdminOnly(authUC, r.logger),
		)

		importHandler := NewImportHandler(importUC, r.logger)
		registerImportRoutes(admin, importHandler)
	})
}

func registerImportRoutes(router chi.Router, h *ImportHandler) {
	router.Route("/external-imports", func(ei chi.Router) {
		ei.Post("/import-by-url", h.importByURL)
		ei.Post("/import-batch", h.importBatch)
		ei.Get("/search", h.search)
		ei.Get("/jobs/{id}", h.getJob)
	})
}
