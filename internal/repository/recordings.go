package repository

import (
	"context"
	"fmt"

	"github.com/yeecord/dashboard/internal/domain/model"
)

// RecordingRepository — интерфейс для таблицы recordings.
type RecordingRepository interface {
	// ListRecentByUser возвращает до limit последних записей пользователя,
	// новые первыми.
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.Recording, error)
	// Create добавляет запись. Дубликат ID — ErrConflict.
	Create(ctx context.Context, userID string, rec *model.Recording) error
}

// recordingRepo — реализация RecordingRepository.
type recordingRepo struct {
	db DBTX
}

// NewRecordingRepository создаёт репозиторий записей.
func NewRecordingRepository(db DBTX) RecordingRepository {
	return &recordingRepo{db: db}
}

// ListRecentByUser возвращает последние записи пользователя.
func (r *recordingRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.Recording, error) {
	query := `
		SELECT id, access_key, created_at, ended_at, expires_at, channel_id, guild_id, autorecorded
		FROM recordings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка recordings: %w", err)
	}
	defer rows.Close()

	recordings := make([]model.Recording, 0, limit)
	for rows.Next() {
		var rec model.Recording
		if err := rows.Scan(
			&rec.ID, &rec.AccessKey, &rec.CreatedAt, &rec.EndedAt, &rec.ExpiresAt,
			&rec.ChannelID, &rec.GuildID, &rec.Autorecorded,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования recordings: %w", err)
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

// Create добавляет запись.
func (r *recordingRepo) Create(ctx context.Context, userID string, rec *model.Recording) error {
	query := `
		INSERT INTO recordings (id, user_id, access_key, created_at, ended_at, expires_at,
			channel_id, guild_id, autorecorded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		rec.ID, userID, rec.AccessKey, rec.CreatedAt, rec.EndedAt, rec.ExpiresAt,
		rec.ChannelID, rec.GuildID, rec.Autorecorded,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания recordings[%s]: %w", rec.ID, err)
	}
	return nil
}
