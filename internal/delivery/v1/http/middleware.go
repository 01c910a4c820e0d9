package http

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
)

type userIDKey struct{}

// AdminOnly пропускает запрос, только если bearer-токен принадлежит администратору.
// Идентификатор пользователя кладётся в контекст запроса.
func AdminOnly(authUC usecase.AuthUC, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authUC.AuthorizeAdmin(r.Context(), bearerToken(r))
			if err != nil {
				logger.Warnf("admin access denied for %s %s: %v", r.Method, r.URL.Path, err)
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
		})
	}
}

// UserIDFromContext возвращает id администратора, прошедшего AdminOnly.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
