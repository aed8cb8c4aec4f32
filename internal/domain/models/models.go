package models

import (
	"time"
)

// Файл с моделями, которые доступны извне.
// Клиент бэкенда заполняет их из ответов API, хранилище результатов
// принимает их на сохранение.

// User определяет модель текущего пользователя
type User struct {
	ID    int
	Name  string
	Email string
}

// Course определяет модель курса: PDF-документ и, возможно, квиз
type Course struct {
	ID          int
	Title       string
	Description string
	TeacherID   int
	TeacherName string
	PDFURL      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuizResult определяет модель результата прохождения квиза
type QuizResult struct {
	ID             int
	UserID         int
	QuizID         int
	Score          int
	TotalQuestions int
	CompletedAt    time.Time
}
