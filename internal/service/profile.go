// profile.go — профиль пользователя и настройки облачного бэкапа.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/repository"
)

// DriveTxRunner выполняет fn в транзакции с репозиториями, привязанными к ней.
// Реализуется *repository.TxRunner.
type DriveTxRunner interface {
	DriveTx(ctx context.Context, fn func(users repository.UserRepository, drives repository.GoogleDriveRepository) error) error
}

// Profile — данные страницы профиля.
type Profile struct {
	User model.User
	// GoogleDriveLinked — привязан ли аккаунт Google Drive
	GoogleDriveLinked bool
}

// ProfileService — бизнес-логика профиля и настроек облачного бэкапа.
type ProfileService struct {
	users  repository.UserRepository
	drives repository.GoogleDriveRepository
	tx     DriveTxRunner
	cache  *LinkCache
	logger *slog.Logger
}

// NewProfileService создаёт сервис профиля. cache может быть nil.
func NewProfileService(
	users repository.UserRepository,
	drives repository.GoogleDriveRepository,
	tx DriveTxRunner,
	cache *LinkCache,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:  users,
		drives: drives,
		tx:     tx,
		cache:  cache,
		logger: logger.With(slog.String("component", "profile_service")),
	}
}

// GetProfile загружает пользователя и статус привязки параллельно.
// Пользователь без строки в users получает значения по умолчанию.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.Get(gctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			p.User = model.User{ID: userID, Drive: model.DefaultDriveSettings()}
			return nil
		}
		if err != nil {
			return err
		}
		p.User = *u
		return nil
	})
	g.Go(func() error {
		linked, err := s.isLinked(gctx, userID)
		if err != nil {
			return err
		}
		p.GoogleDriveLinked = linked
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка загрузки профиля %s: %w", userID, err)
	}
	return p, nil
}

// UpdateDrive валидирует и сохраняет полное желаемое состояние настроек.
// Возвращает сохранённые настройки.
func (s *ProfileService) UpdateDrive(ctx context.Context, userID string, desired model.DriveSettings) (model.DriveSettings, error) {
	desired = desired.WithDefaults()

	if err := ValidateDrive(desired); err != nil {
		driveUpdatesTotal.WithLabelValues("invalid").Inc()
		return model.DriveSettings{}, err
	}

	if desired.Enabled {
		linked, err := s.checkLinked(ctx, userID)
		if err != nil {
			driveUpdatesTotal.WithLabelValues("error").Inc()
			return model.DriveSettings{}, err
		}
		if !linked {
			driveUpdatesTotal.WithLabelValues("not_linked").Inc()
			return model.DriveSettings{}, ErrDriveNotLinked
		}
	}

	if err := s.users.UpsertDrive(ctx, userID, desired); err != nil {
		driveUpdatesTotal.WithLabelValues("error").Inc()
		return model.DriveSettings{}, err
	}

	driveUpdatesTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Настройки облачного бэкапа обновлены",
		slog.String("user_id", userID),
		slog.Bool("enabled", desired.Enabled),
		slog.String("format", desired.FormatKey()),
	)
	return desired, nil
}

// UnlinkGoogleDrive удаляет привязку и выключает облачный бэкап в одной транзакции.
// Отсутствие привязки не ошибка.
func (s *ProfileService) UnlinkGoogleDrive(ctx context.Context, userID string) error {
	err := s.tx.DriveTx(ctx, func(users repository.UserRepository, drives repository.GoogleDriveRepository) error {
		if err := drives.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return users.DisableDrive(ctx, userID)
	})
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
	if err != nil {
		return fmt.Errorf("ошибка отвязки Google Drive %s: %w", userID, err)
	}

	googleUnlinksTotal.Inc()
	s.logger.Info("Google Drive отвязан", slog.String("user_id", userID))
	return nil
}

// ValidateDrive проверяет сервис и пару формат/контейнер по каталогу.
func ValidateDrive(d model.DriveSettings) error {
	if d.Service != model.DefaultDriveService {
		return fmt.Errorf("%w: неизвестный сервис %q", ErrValidation, d.Service)
	}
	if _, ok := model.LookupFormat(d.FormatKey()); !ok {
		return fmt.Errorf("%w: неизвестный формат %q", ErrValidation, d.FormatKey())
	}
	return nil
}

// isLinked проверяет привязку Google Drive через кэш.
// Кэшируется только положительный ответ: привязка выполняется внешним
// OAuth-сервисом, и этот процесс о ней не узнаёт.
func (s *ProfileService) isLinked(ctx context.Context, userID string) (bool, error) {
	if s.cache != nil {
		if linked, ok := s.cache.Get(userID); ok && linked {
			return true, nil
		}
	}
	return s.checkLinked(ctx, userID)
}

// checkLinked читает привязку из хранилища мимо кэша и обновляет кэш.
func (s *ProfileService) checkLinked(ctx context.Context, userID string) (bool, error) {
	linked, err := s.drives.Exists(ctx, userID)
	if err != nil {
		return false, err
	}
	if s.cache != nil {
		if linked {
			s.cache.Set(userID, true)
		} else {
			s.cache.Invalidate(userID)
		}
	}
	return linked, nil
}
