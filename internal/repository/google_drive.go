package repository

import (
	"context"
	"fmt"
)

// GoogleDriveRepository — интерфейс для таблицы google_drive_users.
// Наличие строки означает, что аккаунт Google Drive привязан.
type GoogleDriveRepository interface {
	// Exists проверяет привязку Google Drive.
	Exists(ctx context.Context, userID string) (bool, error)
	// Link привязывает Google Drive. Повторная привязка — ErrConflict.
	Link(ctx context.Context, userID string) error
	// Delete удаляет привязку. Если её нет — ErrNotFound.
	Delete(ctx context.Context, userID string) error
}

// googleDriveRepo — реализация GoogleDriveRepository.
type googleDriveRepo struct {
	db DBTX
}

// NewGoogleDriveRepository создаёт репозиторий привязок Google Drive.
func NewGoogleDriveRepository(db DBTX) GoogleDriveRepository {
	return &googleDriveRepo{db: db}
}

// Exists проверяет наличие строки привязки.
func (r *googleDriveRepo) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM google_drive_users WHERE id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки google_drive_users[%s]: %w", userID, err)
	}
	return exists, nil
}

// Link создаёт строку привязки.
func (r *googleDriveRepo) Link(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO google_drive_users (id) VALUES ($1)`, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка привязки google_drive_users[%s]: %w", userID, err)
	}
	return nil
}

// Delete удаляет строку привязки.
func (r *googleDriveRepo) Delete(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM google_drive_users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления google_drive_users[%s]: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
