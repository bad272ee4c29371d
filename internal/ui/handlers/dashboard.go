// Пакет handlers — HTTP-обработчики страниц dashboard.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/yeecord/dashboard/internal/domain/drivesync"
	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/service"
	"github.com/yeecord/dashboard/internal/ui/i18n"
	uimiddleware "github.com/yeecord/dashboard/internal/ui/middleware"
	"github.com/yeecord/dashboard/internal/ui/pages"
)

// ProfileService — чтение профиля и обновление настроек облачного бэкапа.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*service.Profile, error)
	UpdateDrive(ctx context.Context, userID string, desired model.DriveSettings) (model.DriveSettings, error)
}

// DashboardHandler — обработчик страницы профиля.
type DashboardHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(profiles ProfileService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard обрабатывает GET / — профиль и настройки облачного бэкапа.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), session.User.ID)
	if err != nil {
		h.logger.Error("Ошибка загрузки профиля",
			slog.String("error", err.Error()),
			slog.String("user_id", session.User.ID),
		)
		http.Error(w, "Failed to load your profile", http.StatusInternalServerError)
		return
	}

	h.render(w, r, pages.IndexData{
		User:              session.User,
		RewardTier:        profile.User.RewardTier,
		Drive:             profile.User.Drive,
		GoogleDriveLinked: profile.GoogleDriveLinked,
		Modal:             queryModal(r.Context(), r.URL.Query()),
	})
}

// HandleDriveUpdate обрабатывает POST /drive — отправку формы настроек.
// Изменение проходит через drivesync.Reconciler: при ошибке страница
// отрисовывается с подтверждённым состоянием и диалогом ошибки.
func (h *DashboardHandler) HandleDriveUpdate(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ctx := r.Context()

	profile, err := h.profiles.GetProfile(ctx, session.User.ID)
	if err != nil {
		h.logger.Error("Ошибка загрузки профиля",
			slog.String("error", err.Error()),
			slog.String("user_id", session.User.ID),
		)
		http.Error(w, "Failed to load your profile", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	desired := desiredFromForm(profile.User.Drive, r.PostForm)

	var dialog *drivesync.Dialog
	remote := &serviceRemote{profiles: h.profiles, userID: session.User.ID, logger: h.logger}
	reconciler := drivesync.New(profile.User.Drive, remote, drivesync.NotifierFunc(func(d drivesync.Dialog) {
		dialog = &d
	}), h.logger)

	// Ошибка уже отражена в диалоге и откате локального состояния
	_ = reconciler.Change(ctx, desired)

	data := pages.IndexData{
		User:              session.User,
		RewardTier:        profile.User.RewardTier,
		Drive:             reconciler.Local(),
		GoogleDriveLinked: profile.GoogleDriveLinked,
		Loading:           reconciler.Loading(),
	}
	if dialog != nil {
		data.Modal = &pages.Modal{Title: dialog.Title, Content: dialog.Message}
	}
	h.render(w, r, data)
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, data pages.IndexData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := pages.Index(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга Dashboard",
			slog.String("error", err.Error()),
			slog.String("user_id", data.User.ID),
		)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// desiredFromForm строит полное желаемое состояние из формы.
// Снятый или заблокированный флажок не отправляется и означает false.
// Без поля format сохраняется текущий формат.
func desiredFromForm(current model.DriveSettings, form url.Values) model.DriveSettings {
	desired := current
	desired.Enabled = form.Get("enabled") == "true"
	if key := form.Get("format"); key != "" {
		desired.Format, desired.Container, _ = model.ParseFormatKey(key)
	}
	return desired.WithDefaults()
}

// queryModal строит модальное окно по параметрам error, from и r,
// с которыми сервисы входа возвращают пользователя на страницу.
func queryModal(ctx context.Context, q url.Values) *pages.Modal {
	var title, content string

	if code := q.Get("error"); code != "" {
		switch q.Get("from") {
		case "google":
			title = i18n.T(ctx, "modal.error_google")
		case "discord":
			title = i18n.T(ctx, "modal.error_discord")
		default:
			title = i18n.T(ctx, "modal.error_generic")
		}

		switch code {
		case "access_denied":
			content = i18n.T(ctx, "modal.access_denied")
		case "invalid_scope":
			content = i18n.T(ctx, "modal.invalid_scope")
		default:
			content = code
		}
	}

	switch q.Get("r") {
	case "google_linked":
		title = i18n.T(ctx, "modal.google_linked_title")
		content = i18n.T(ctx, "modal.google_linked")
	case "google_unlinked":
		title = i18n.T(ctx, "modal.google_unlinked_title")
		content = i18n.T(ctx, "modal.google_unlinked")
	}

	if title == "" || content == "" {
		return nil
	}
	return &pages.Modal{Title: title, Content: content}
}
