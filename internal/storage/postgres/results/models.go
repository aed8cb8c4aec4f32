package results

import (
	"time"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

// Row — строка таблицы quiz_results.
type Row struct {
	ID             int
	UserID         int
	QuizID         int
	Score          int
	TotalQuestions int
	CompletedAt    time.Time
}

// FromModel собирает строку из доменной модели.
func FromModel(r *models.QuizResult) Row {
	return Row{
		ID:             r.ID,
		UserID:         r.UserID,
		QuizID:         r.QuizID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CompletedAt:    r.CompletedAt.UTC(),
	}
}

// Model переводит строку в доменную модель.
func (r Row) Model() models.QuizResult {
	return models.QuizResult{
		ID:             r.ID,
		UserID:         r.UserID,
		QuizID:         r.QuizID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CompletedAt:    r.CompletedAt,
	}
}
