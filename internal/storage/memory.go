package storage

import (
	"context"
	"sync"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

// MemoryStorage реализует Storage в памяти.
type MemoryStorage struct {
	mu      sync.RWMutex
	nextID  int
	results []models.QuizResult
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextID: 1}
}

// SaveResult сохраняет результат.
func (s *MemoryStorage) SaveResult(ctx context.Context, r *models.QuizResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := Validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	s.results = append(s.results, *r)

	return nil
}

// ListResults возвращает результаты пользователя.
func (s *MemoryStorage) ListResults(ctx context.Context, userID int) ([]models.QuizResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.QuizResult
	for _, r := range s.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}

	return out, nil
}
