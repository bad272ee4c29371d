package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yeecord/dashboard/internal/domain/drivesync"
	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/service"
)

// Тексты ошибок для пользователя (совпадают с ответами JSON API).
const (
	msgDriveNotLinked = "You must link your Google Drive account to enable cloud backups."
	msgInvalidDrive   = "Invalid drive settings."
	msgInternal       = "An internal error occurred. Please try again later."
)

// serviceRemote — drivesync.Remote поверх сервиса в том же процессе.
// Ошибки сервиса переводятся в RemoteError так же, как их отдаёт JSON API.
type serviceRemote struct {
	profiles ProfileService
	userID   string
	logger   *slog.Logger
}

func (s *serviceRemote) UpdateDrive(ctx context.Context, desired model.DriveSettings) error {
	_, err := s.profiles.UpdateDrive(ctx, s.userID, desired)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrDriveNotLinked):
		return &drivesync.RemoteError{Status: http.StatusBadRequest, Message: msgDriveNotLinked}
	case errors.Is(err, service.ErrValidation):
		return &drivesync.RemoteError{Status: http.StatusBadRequest, Message: msgInvalidDrive}
	default:
		s.logger.Error("Ошибка обновления настроек облачного бэкапа",
			slog.String("user_id", s.userID),
			slog.String("error", err.Error()),
		)
		return &drivesync.RemoteError{Status: http.StatusInternalServerError, Message: msgInternal}
	}
}
