// auth.go — проверка сессии для JSON API.
// Токен берётся из cookie "token" или заголовка Authorization: Bearer (CLI).
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	apierrors "github.com/yeecord/dashboard/internal/api/errors"
	"github.com/yeecord/dashboard/internal/ui/auth"
)

// SessionAuth — middleware аутентификации API.
type SessionAuth struct {
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewSessionAuth создаёт middleware аутентификации API.
func NewSessionAuth(sessions *auth.SessionManager, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "api_auth_middleware")),
	}
}

// Middleware отвечает 401 без действительной сессии и кладёт сессию в контекст.
func (a *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := a.sessions.GetSessionFromRequest(r)
			if err != nil {
				a.logger.Debug("Недействительный токен сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Your session is invalid or has expired. Please log in again.")
				return
			}
			if session == nil {
				apierrors.Unauthorized(w, "You must be logged in.")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), session)))
		})
	}
}

// SessionFromContext извлекает сессию из контекста запроса.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	return auth.FromContext(ctx)
}
