// session.go — выход из сессии и отвязка Google Drive.
// Обе операции отвечают redirect на страницу профиля.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yeecord/dashboard/internal/ui/auth"
)

// GoogleUnlinker — отвязка Google Drive.
type GoogleUnlinker interface {
	UnlinkGoogleDrive(ctx context.Context, userID string) error
}

// SessionHandler — обработчик /api/logout и /api/google/disconnect.
type SessionHandler struct {
	sessions *auth.SessionManager
	google   GoogleUnlinker
	logger   *slog.Logger
}

// NewSessionHandler создаёт обработчик сессии.
func NewSessionHandler(sessions *auth.SessionManager, google GoogleUnlinker, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		google:   google,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Logout — GET /api/logout. Удаляет cookie и перенаправляет на главную.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// GoogleDisconnect — POST /api/google/disconnect (требует сессии).
// Меняет состояние, поэтому только POST: cookie сессии SameSite=Lax
// не отправляется с межсайтовых POST-запросов.
// Успех — /?r=google_unlinked, ошибка — /?error=server_error&from=google.
func (h *SessionHandler) GoogleDisconnect(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	if err := h.google.UnlinkGoogleDrive(r.Context(), session.User.ID); err != nil {
		h.logger.Error("Ошибка отвязки Google Drive",
			slog.String("user_id", session.User.ID),
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, "/?error=server_error&from=google", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?r=google_unlinked", http.StatusSeeOther)
}
