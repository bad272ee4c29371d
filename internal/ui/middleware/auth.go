// Пакет middleware — HTTP middleware страниц dashboard.
// auth.go — проверка сессии (cookie "token"), redirect на страницу входа.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yeecord/dashboard/internal/ui/auth"
)

// UIAuth — middleware аутентификации страниц.
// Без действительной сессии перенаправляет на loginURL.
type UIAuth struct {
	sessionManager *auth.SessionManager
	loginURL       string
	logger         *slog.Logger
}

// NewUIAuth создаёт middleware аутентификации страниц.
func NewUIAuth(sessionManager *auth.SessionManager, loginURL string, logger *slog.Logger) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		loginURL:       loginURL,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware проверки сессии.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Недействительная сессия",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый или просроченный токен: очищаем cookie
				ua.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, ua.loginURL, http.StatusFound)
				return
			}
			if session == nil {
				http.Redirect(w, r, ua.loginURL, http.StatusFound)
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
