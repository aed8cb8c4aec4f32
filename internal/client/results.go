package client

import (
	"context"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

// ResultStore сохраняет результаты квизов через бэкенд.
// Реализует storage.Storage.
type ResultStore struct {
	client *HTTPClient
}

// NewResultStore создаёт хранилище результатов поверх клиента.
func NewResultStore(c *HTTPClient) *ResultStore {
	return &ResultStore{client: c}
}

// SaveResult отправляет результат и проставляет ему ID из ответа.
func (s *ResultStore) SaveResult(ctx context.Context, r *models.QuizResult) error {
	saved, err := s.client.SaveResult(ctx, r)
	if err != nil {
		return err
	}

	r.ID = saved.ID

	return nil
}

// ListResults возвращает результаты пользователя.
func (s *ResultStore) ListResults(ctx context.Context, userID int) ([]models.QuizResult, error) {
	return s.client.ListResults(ctx, userID)
}
