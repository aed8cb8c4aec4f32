package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/letsssgooo/coursedeck/internal/client"
	"github.com/letsssgooo/coursedeck/internal/domain/models"
	"github.com/letsssgooo/coursedeck/internal/quiz"
)

// ErrNotFound возвращается, если курса нет в каталоге.
var ErrNotFound = errors.New("course not found")

// Backend — источник курсов, квизов и вопросов.
type Backend interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListQuizzes(ctx context.Context) ([]client.Quiz, error)
	ListQuestions(ctx context.Context, quizID int) ([]client.Question, error)
}

// Catalog хранит курсы и привязанные к ним квизы.
type Catalog struct {
	backend Backend
	log     *slog.Logger

	mu      sync.RWMutex
	courses map[int]models.Course
	quizzes map[int]*quiz.Quiz
}

// NewCatalog создаёт пустой каталог.
func NewCatalog(backend Backend, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}

	return &Catalog{
		backend: backend,
		log:     log,
		courses: make(map[int]models.Course),
		quizzes: make(map[int]*quiz.Quiz),
	}
}

// Load загружает курсы, квизы и вопросы каждого квиза.
// Квиз с некорректными вопросами пропускается, отказ авторизации прерывает загрузку.
func (c *Catalog) Load(ctx context.Context) error {
	courses, err := c.backend.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("can not load courses, %w", err)
	}

	quizzes, err := c.backend.ListQuizzes(ctx)
	if err != nil {
		return fmt.Errorf("can not load quizzes, %w", err)
	}

	byCourse := make(map[int]*quiz.Quiz, len(quizzes))
	for _, dto := range quizzes {
		if _, ok := byCourse[dto.CourseID]; ok {
			continue
		}

		questions, err := c.backend.ListQuestions(ctx, dto.ID)
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		if err != nil {
			c.log.Warn("can not load questions", slog.Int("quiz", dto.ID), slog.Any("error", err))
			continue
		}

		q := toQuiz(dto, questions)
		if err = quiz.ValidateQuiz(q); err != nil {
			c.log.Warn("skip invalid quiz", slog.Int("quiz", dto.ID), slog.Any("error", err))
			continue
		}

		byCourse[dto.CourseID] = q
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.courses = make(map[int]models.Course, len(courses))
	for _, course := range courses {
		c.courses[course.ID] = course
	}
	c.quizzes = byCourse

	c.log.Info("catalog loaded", slog.Int("courses", len(courses)), slog.Int("quizzes", len(byCourse)))

	return nil
}

// Put добавляет курс и, если задан, его квиз. Используется для локальных курсов.
func (c *Catalog) Put(course models.Course, q *quiz.Quiz) error {
	if q != nil {
		if err := quiz.ValidateQuiz(q); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.courses[course.ID] = course
	if q != nil {
		c.quizzes[course.ID] = q
	}

	return nil
}

// Courses возвращает курсы, отсортированные по id.
func (c *Catalog) Courses() []models.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Course, 0, len(c.courses))
	for _, course := range c.courses {
		out = append(out, course)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

// Course возвращает курс по id.
func (c *Catalog) Course(id int) (*models.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	course, ok := c.courses[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return &course, nil
}

// QuizForCourse возвращает квиз курса, если он есть.
func (c *Catalog) QuizForCourse(courseID int) (*quiz.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.quizzes[courseID]

	return q, ok
}

func toQuiz(dto client.Quiz, questions []client.Question) *quiz.Quiz {
	q := &quiz.Quiz{
		ID:        strconv.Itoa(dto.ID),
		CourseID:  strconv.Itoa(dto.CourseID),
		Title:     dto.Title,
		Questions: make([]quiz.Question, 0, len(questions)),
	}

	for _, question := range questions {
		q.Questions = append(q.Questions, quiz.Question{
			ID:                 strconv.Itoa(question.ID),
			Text:               question.Text,
			Options:            question.Options,
			CorrectOptionIndex: question.CorrectOptionIndex,
		})
	}

	return q
}
