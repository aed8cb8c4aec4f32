package client

import (
	"errors"
	"time"
)

// Token — ответ на обмен логина и пароля.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User представляет пользователя бэкенда.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Course представляет курс.
type Course struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	PDFURL      string `json:"pdf_url"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Quiz представляет квиз курса без вопросов.
type Quiz struct {
	ID       int    `json:"id"`
	CourseID int    `json:"course_id"`
	Title    string `json:"title"`
}

// Question представляет вопрос квиза.
type Question struct {
	ID                 int      `json:"id"`
	QuizID             int      `json:"quiz_id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// Result представляет сохранённый результат квиза.
type Result struct {
	ID             int    `json:"id,omitempty"`
	UserID         int    `json:"user_id"`
	QuizID         int    `json:"quiz_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CompletedAt    string `json:"completed_at"`
}

// TokenSource отдаёт текущий токен доступа. Пустая строка — без авторизации.
type TokenSource interface {
	Token() string
}

// Config задаёт параметры клиента.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	DownloadTimeout time.Duration
}

// Ошибки бэкенда
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Таймауты по умолчанию
const (
	timeoutSend     = 5 * time.Second
	timeoutDownload = 30 * time.Second
)
