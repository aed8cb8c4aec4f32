package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
	"github.com/letsssgooo/coursedeck/internal/storage"
	"github.com/letsssgooo/coursedeck/internal/storage/postgres/results"
)

const schema = `
CREATE TABLE IF NOT EXISTS quiz_results (
	id              SERIAL PRIMARY KEY,
	user_id         INTEGER NOT NULL,
	quiz_id         INTEGER NOT NULL,
	score           INTEGER NOT NULL,
	total_questions INTEGER NOT NULL,
	completed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_results_user_id_idx ON quiz_results (user_id);
`

// Storage реализует storage.Storage поверх PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("can not parse dsn, %w", err)
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("can not connect to postgres, %w", err)
	}

	return &Storage{pool: pool}, nil
}

// Migrate создаёт таблицу результатов, если её нет.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *Storage) SaveResult(ctx context.Context, r *models.QuizResult) error {
	if err := storage.Validate(r); err != nil {
		return err
	}

	row := results.FromModel(r)
	query := `
	INSERT INTO quiz_results (user_id, quiz_id, score, total_questions, completed_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		row.UserID, row.QuizID, row.Score, row.TotalQuestions, row.CompletedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("can not save result, %w", err)
	}

	return nil
}

func (s *Storage) ListResults(ctx context.Context, userID int) ([]models.QuizResult, error) {
	query := `
		SELECT id, user_id, quiz_id, score, total_questions, completed_at
		FROM quiz_results WHERE user_id = $1 ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizResult
	for rows.Next() {
		var row results.Row
		if err = rows.Scan(&row.ID, &row.UserID, &row.QuizID, &row.Score, &row.TotalQuestions, &row.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, row.Model())
	}

	return out, rows.Err()
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.pool.Close()
}
