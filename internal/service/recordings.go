// recordings.go — список последних записей пользователя.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/repository"
)

// RecordingService — бизнес-логика страницы записей.
type RecordingService struct {
	repo   repository.RecordingRepository
	limit  int
	logger *slog.Logger
}

// NewRecordingService создаёт сервис записей. limit — сколько последних записей отдавать.
func NewRecordingService(repo repository.RecordingRepository, limit int, logger *slog.Logger) *RecordingService {
	return &RecordingService{
		repo:   repo,
		limit:  limit,
		logger: logger.With(slog.String("component", "recording_service")),
	}
}

// ListRecent возвращает последние записи пользователя, новые первыми.
func (s *RecordingService) ListRecent(ctx context.Context, userID string) ([]model.Recording, error) {
	recs, err := s.repo.ListRecentByUser(ctx, userID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей %s: %w", userID, err)
	}
	recordingsListed.Observe(float64(len(recs)))
	s.logger.Debug("Список записей загружен",
		slog.String("user_id", userID),
		slog.Int("count", len(recs)),
	)
	return recs, nil
}
