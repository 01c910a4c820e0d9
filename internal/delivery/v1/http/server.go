package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
)

const readHeaderTimeout = 5 * time.Second

type Server struct {
	httpServer *http.Server
}

// NewServer настраивает таймауты сервера. WriteTimeout должен покрывать синхронный пакетный импорт.
func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// Run блокируется до остановки сервера. Штатная остановка через Stop возвращает nil.
func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop перестаёт принимать соединения и дожидается активных запросов в пределах ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
