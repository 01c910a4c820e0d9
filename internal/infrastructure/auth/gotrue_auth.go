package auth

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/supplier-imports/internal/cfg"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
)

// GoTrueAuth проверяет токены администраторов через GoTrue (GET {AUTH_URL}/auth/v1/user).
type GoTrueAuth struct {
	client gotrue.Client
	cfg    cfg.AuthCfg
	logger logger.Logger
}

func NewGoTrueAuth(cfg *cfg.AuthCfg, logger logger.Logger) *GoTrueAuth {
	// project reference не нужен: базовый адрес задаётся явно
	client := gotrue.New("", cfg.APIKey).WithCustomGoTrueURL(cfg.URL + "/auth/v1")

	return &GoTrueAuth{
		client: client,
		cfg:    *cfg,
		logger: logger,
	}
}

type verifyResult struct {
	id  uuid.UUID
	err error
}

// VerifyToken возвращает id пользователя, которому принадлежит токен.
// Любой отказ сервиса авторизации помечается e.ErrUnauthorized.
func (a *GoTrueAuth) VerifyToken(ctx context.Context, token string) (string, error) {
	const op = "GoTrueAuth.VerifyToken"

	if token == "" {
		return "", e.Wrap(op, e.ErrUnauthorized)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	// клиент GoTrue не принимает контекст, поэтому ожидание ограничивается здесь
	done := make(chan verifyResult, 1)
	go func() {
		user, err := a.client.WithToken(token).GetUser()
		if err != nil {
			done <- verifyResult{err: err}
			return
		}
		done <- verifyResult{id: user.ID}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			a.logger.Debugf("%s: token rejected: %v", op, res.err)
			return "", e.Mark(e.ErrUnauthorized, e.Wrap(op, res.err))
		}
		if res.id == uuid.Nil {
			return "", e.Mark(e.ErrUnauthorized, e.Wrap(op, fmt.Errorf("auth response has no user id")))
		}
		return res.id.String(), nil
	case <-ctx.Done():
		return "", e.Mark(e.ErrUnauthorized, e.Wrap(op, ctx.Err()))
	}
}
