package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

var adminRoles = map[string]struct{}{
	"admin":       {},
	"super_admin": {},
}

// AuthUseCase пропускает к импорту только пользователей с ролью admin или super_admin.
type AuthUseCase struct {
	authInfra   AuthInfra
	profileRepo ProfileRepository
	logger      logger.Logger
}

func NewAuthUC(authInfra AuthInfra, profileRepo ProfileRepository, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		authInfra:   authInfra,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// AuthorizeAdmin возвращает id пользователя, если токен валиден и роль в profiles административная.
func (a *AuthUseCase) AuthorizeAdmin(ctx context.Context, token string) (string, error) {
	const op = "AuthUseCase.AuthorizeAdmin"

	if strings.TrimSpace(token) == "" {
		return "", e.Wrap(op, e.ErrUnauthorized)
	}

	userID, err := a.authInfra.VerifyToken(ctx, token)
	if err != nil {
		return "", e.Wrap(op, e.Mark(e.ErrUnauthorized, err))
	}

	role, err := a.profileRepo.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return "", e.Wrap(op, e.Mark(e.ErrUnauthorized, err))
		}
		return "", e.Wrap(op, err)
	}

	if _, ok := adminRoles[role]; !ok {
		a.logger.Warnf("%s: user %s with role %q denied", op, userID, role)
		return "", e.Wrap(op, e.ErrUnauthorized)
	}

	return userID, nil
}
