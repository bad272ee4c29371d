// handler.go — обработчики JSON API dashboard.
// Делегируют запросы в сервисный слой, ошибки отдают через api/errors.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/yeecord/dashboard/internal/api/contract"
	apierrors "github.com/yeecord/dashboard/internal/api/errors"
	"github.com/yeecord/dashboard/internal/api/middleware"
	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/service"
)

// Тексты ошибок для пользователя.
const (
	msgDriveNotLinked = "You must link your Google Drive account to enable cloud backups."
	msgInternal       = "An internal error occurred. Please try again later."
)

// maxDriveBodyBytes — предел размера тела PUT /api/user/drive.
const maxDriveBodyBytes = 4 << 10

// DriveService — операции над настройками облачного бэкапа.
type DriveService interface {
	GetProfile(ctx context.Context, userID string) (*service.Profile, error)
	UpdateDrive(ctx context.Context, userID string, desired model.DriveSettings) (model.DriveSettings, error)
}

// DriveStatus — ответ GET /api/user/drive.
type DriveStatus struct {
	model.DriveSettings
	GoogleDriveLinked bool `json:"googleDriveLinked"`
	RewardTier        int  `json:"rewardTier"`
}

// RecordingLister — список последних записей пользователя.
type RecordingLister interface {
	ListRecent(ctx context.Context, userID string) ([]model.Recording, error)
}

// APIHandler — обработчик JSON API.
type APIHandler struct {
	drive      DriveService
	recordings RecordingLister
	validator  *contract.Validator
	logger     *slog.Logger
}

// NewAPIHandler создаёт обработчик JSON API.
func NewAPIHandler(
	drive DriveService,
	recordings RecordingLister,
	validator *contract.Validator,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		drive:      drive,
		recordings: recordings,
		validator:  validator,
		logger:     logger.With(slog.String("component", "api_handler")),
	}
}

// GetDrive — GET /api/user/drive. Настройки, привязка Google Drive и уровень.
func (h *APIHandler) GetDrive(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	profile, err := h.drive.GetProfile(r.Context(), session.User.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DriveStatus{
		DriveSettings:     profile.User.Drive,
		GoogleDriveLinked: profile.GoogleDriveLinked,
		RewardTier:        profile.User.RewardTier,
	})
}

// UpdateDrive — PUT /api/user/drive. Тело — полное желаемое состояние.
func (h *APIHandler) UpdateDrive(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDriveBodyBytes))
	if err != nil {
		apierrors.ValidationError(w, "Request body is too large.")
		return
	}
	if err := h.validator.ValidateDriveSettings(body); err != nil {
		h.logger.Debug("Тело запроса не прошло проверку контракта",
			slog.String("user_id", session.User.ID),
			slog.String("error", err.Error()),
		)
		apierrors.ValidationError(w, "Invalid drive settings.")
		return
	}

	var desired model.DriveSettings
	if err := decodeJSON(body, &desired); err != nil {
		apierrors.ValidationError(w, "Invalid drive settings.")
		return
	}

	stored, err := h.drive.UpdateDrive(r.Context(), session.User.ID, desired)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// ListRecordings — GET /api/user/recordings.
func (h *APIHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())

	recs, err := h.recordings.ListRecent(r.Context(), session.User.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// writeServiceError маппит ошибки сервисного слоя в HTTP-ответы.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDriveNotLinked):
		apierrors.DriveNotLinked(w, msgDriveNotLinked)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, "Invalid drive settings.")
	default:
		h.logger.Error("Внутренняя ошибка API", slog.String("error", err.Error()))
		apierrors.InternalError(w, msgInternal)
	}
}
