package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yeecord/dashboard/internal/domain/model"
)

// UserRepository — интерфейс для таблицы users.
type UserRepository interface {
	// Get возвращает пользователя по ID. Если не найден — ErrNotFound.
	Get(ctx context.Context, id string) (*model.User, error)
	// UpsertDrive сохраняет настройки облачного бэкапа, создавая строку при необходимости.
	UpsertDrive(ctx context.Context, id string, drive model.DriveSettings) error
	// DisableDrive выключает облачный бэкап. Отсутствие строки не ошибка.
	DisableDrive(ctx context.Context, id string) error
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

// Get возвращает пользователя по ID.
func (r *userRepo) Get(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, reward_tier, drive_enabled, drive_service, drive_format, drive_container
		FROM users
		WHERE id = $1`

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.RewardTier,
		&u.Drive.Enabled, &u.Drive.Service, &u.Drive.Format, &u.Drive.Container,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения users[%s]: %w", id, err)
	}
	u.Drive = u.Drive.WithDefaults()
	return u, nil
}

// UpsertDrive создаёт или обновляет настройки (INSERT ... ON CONFLICT DO UPDATE).
func (r *userRepo) UpsertDrive(ctx context.Context, id string, drive model.DriveSettings) error {
	query := `
		INSERT INTO users (id, drive_enabled, drive_service, drive_format, drive_container)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET drive_enabled = EXCLUDED.drive_enabled,
			drive_service = EXCLUDED.drive_service,
			drive_format = EXCLUDED.drive_format,
			drive_container = EXCLUDED.drive_container,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, id, drive.Enabled, drive.Service, drive.Format, drive.Container)
	if err != nil {
		return fmt.Errorf("ошибка сохранения настроек drive users[%s]: %w", id, err)
	}
	return nil
}

// DisableDrive выключает облачный бэкап пользователя.
func (r *userRepo) DisableDrive(ctx context.Context, id string) error {
	query := `UPDATE users SET drive_enabled = FALSE, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("ошибка отключения drive users[%s]: %w", id, err)
	}
	return nil
}
