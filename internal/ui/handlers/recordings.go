package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/domain/selection"
	uimiddleware "github.com/yeecord/dashboard/internal/ui/middleware"
	"github.com/yeecord/dashboard/internal/ui/pages"
)

// Действия формы страницы записей.
const (
	actionToggle    = "toggle"
	actionToggleAll = "toggle-all"
	actionDownload  = "download"
)

// RecordingLister — последние записи пользователя, новые первыми.
type RecordingLister interface {
	ListRecent(ctx context.Context, userID string) ([]model.Recording, error)
}

// RecordingsHandler — обработчик страницы записей.
type RecordingsHandler struct {
	recordings RecordingLister
	stagger    time.Duration
	baseURL    string
	clock      func() time.Time
	logger     *slog.Logger
}

// NewRecordingsHandler создаёт новый RecordingsHandler.
// stagger — шаг задержки между открытием загрузок.
func NewRecordingsHandler(recordings RecordingLister, stagger time.Duration, logger *slog.Logger) *RecordingsHandler {
	return &RecordingsHandler{
		recordings: recordings,
		stagger:    stagger,
		clock:      time.Now,
		logger:     logger.With(slog.String("component", "ui.recordings")),
	}
}

// SetBaseURL задаёт префикс ссылок скачивания (пусто — относительные ссылки).
func (h *RecordingsHandler) SetBaseURL(base string) {
	h.baseURL = base
}

// HandleRecordings обрабатывает GET и POST /recordings.
// POST несёт текущий выбор (selected) и действие (action):
// "toggle" с id (или "toggle:<id>"), "toggle-all", "download".
func (h *RecordingsHandler) HandleRecordings(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recs, err := h.recordings.ListRecent(r.Context(), session.User.ID)
	if err != nil {
		h.logger.Error("Ошибка загрузки записей",
			slog.String("error", err.Error()),
			slog.String("user_id", session.User.ID),
		)
		http.Error(w, "Failed to load your recordings", http.StatusInternalServerError)
		return
	}

	ctrl := selection.NewController(recs,
		selection.WithClock(h.clock),
		selection.WithStagger(h.stagger),
		selection.WithBaseURL(h.baseURL),
	)

	var plan []selection.Download
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		ctrl.RestoreSet(r.PostForm["selected"])

		action, id := parseAction(r.PostForm.Get("action"), r.PostForm.Get("id"))
		switch action {
		case actionToggle:
			ctrl.ToggleSelect(id)
		case actionToggleAll:
			ctrl.ToggleAll()
		case actionDownload:
			plan = ctrl.DownloadPlan()
			h.logger.Info("Пакетная загрузка записей",
				slog.String("user_id", session.User.ID),
				slog.Int("count", len(plan)),
			)
		}
	}

	data := buildRecordingsData(ctrl)
	data.User = session.User
	data.Stagger = h.stagger
	data.Plan = plan

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Recordings(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга Recordings",
			slog.String("error", err.Error()),
			slog.String("user_id", session.User.ID),
		)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// parseAction разбирает action: "toggle:<id>" эквивалентно action=toggle и id=<id>.
func parseAction(action, id string) (string, string) {
	if name, rest, ok := strings.Cut(action, ":"); ok && name == actionToggle {
		return actionToggle, rest
	}
	return action, id
}

// buildRecordingsData снимает состояние контроллера для отрисовки.
func buildRecordingsData(ctrl *selection.Controller) pages.RecordingsData {
	selected := ctrl.Selected()
	recs := ctrl.Recordings()

	rows := make([]pages.RecordingRow, 0, len(recs))
	for i := range recs {
		rows = append(rows, pages.RecordingRow{
			Recording:   recs[i],
			Expired:     ctrl.IsExpired(&recs[i]),
			Selected:    selected.Has(recs[i].ID),
			DownloadURL: ctrl.DownloadURL(&recs[i]),
		})
	}

	return pages.RecordingsData{
		Rows:            rows,
		SelectableCount: len(ctrl.AllSelectable()),
		SelectedCount:   selected.Len(),
		AllSelected:     ctrl.AllSelected(),
	}
}
