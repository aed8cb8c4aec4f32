package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

// ErrInvalidResult возвращается при попытке сохранить некорректный результат.
var ErrInvalidResult = errors.New("invalid quiz result")

// Storage определяет интерфейс для хранения результатов квизов.
type Storage interface {
	// SaveResult сохраняет результат и проставляет ему ID.
	SaveResult(ctx context.Context, r *models.QuizResult) error

	// ListResults возвращает результаты пользователя в порядке сохранения.
	ListResults(ctx context.Context, userID int) ([]models.QuizResult, error)
}

// Validate проверяет результат перед сохранением.
func Validate(r *models.QuizResult) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: result is nil", ErrInvalidResult)
	case r.QuizID < 1:
		return fmt.Errorf("%w: quiz id %d is not positive", ErrInvalidResult, r.QuizID)
	case r.TotalQuestions < 1:
		return fmt.Errorf("%w: total questions must be positive", ErrInvalidResult)
	case r.Score < 0 || r.Score > 100:
		return fmt.Errorf("%w: score %d is out of range", ErrInvalidResult, r.Score)
	case r.CompletedAt.IsZero():
		return fmt.Errorf("%w: missing completion time", ErrInvalidResult)
	}

	return nil
}
