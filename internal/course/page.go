package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
	"github.com/letsssgooo/coursedeck/internal/quiz"
)

// Ошибки открытия квиза
var (
	ErrLocked = errors.New("quiz is locked until the document is read to the end")
	ErrNoQuiz = errors.New("the instructor hasn't added a quiz for this course yet")
	ErrActive = errors.New("quiz is already in progress")
	ErrQuizID = errors.New("quiz id must be a positive number")
)

// Таймаут сохранения результата
const timeoutSave = 10 * time.Second

// ResultSink сохраняет результат квиза.
type ResultSink interface {
	SaveResult(ctx context.Context, r *models.QuizResult) error
}

// Page — страница курса: документ, затем квиз.
// Квиз открывается после прихода на последнюю страницу документа и
// дальше остаётся открытым, даже если пользователь вернулся назад.
type Page struct {
	ctx    context.Context
	course models.Course
	quiz   *quiz.Quiz
	quizID int
	userID int
	sink   ResultSink
	log    *slog.Logger
	now    func() time.Time

	onSaved func(*models.QuizResult, error)

	mu       sync.Mutex
	unlocked bool
	session  *quiz.Session
	saves    sync.WaitGroup
}

// PageOption настраивает Page.
type PageOption func(*Page)

// WithPageLogger задаёт логгер страницы.
func WithPageLogger(log *slog.Logger) PageOption {
	return func(p *Page) {
		p.log = log
	}
}

// WithNow задаёт источник текущего времени для отметки о завершении.
func WithNow(now func() time.Time) PageOption {
	return func(p *Page) {
		p.now = now
	}
}

// OnSaved вызывается после попытки сохранить результат.
func OnSaved(fn func(*models.QuizResult, error)) PageOption {
	return func(p *Page) {
		p.onSaved = fn
	}
}

// NewPage создаёт страницу курса. q может быть nil, если квиза нет.
func NewPage(ctx context.Context, course models.Course, q *quiz.Quiz, userID int, sink ResultSink, opts ...PageOption) *Page {
	p := &Page{
		ctx:    ctx,
		course: course,
		quiz:   q,
		userID: userID,
		sink:   sink,
		log:    slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.log = p.log.With(slog.Int("course", course.ID))

	if q != nil {
		id, err := ParseQuizID(q.ID)
		if err != nil {
			p.log.Warn("quiz results can not be saved", slog.Any("error", err))
		}

		p.quizID = id
	}

	return p
}

// ParseQuizID разбирает id квиза, под которым сохраняются результаты.
func ParseQuizID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w, got %q", ErrQuizID, id)
	}

	return n, nil
}

// Course возвращает курс страницы.
func (p *Page) Course() models.Course {
	return p.course
}

// Quiz возвращает квиз курса или nil.
func (p *Page) Quiz() *quiz.Quiz {
	return p.quiz
}

// Unlock открывает доступ к квизу. Подключается к завершению просмотра документа.
func (p *Page) Unlock() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.unlocked {
		p.log.Info("quiz unlocked")
	}

	p.unlocked = true
}

// Unlocked сообщает, открыт ли доступ к квизу.
func (p *Page) Unlocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.unlocked
}

// CanTakeQuiz сообщает, можно ли начать квиз.
func (p *Page) CanTakeQuiz() bool {
	return p.Unlocked() && p.quiz != nil
}

// StartQuiz начинает попытку. Результат попытки сохраняется в фоне
// через ResultSink, ошибки сохранения только логируются.
func (p *Page) StartQuiz(opts ...quiz.Option) (*quiz.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case !p.unlocked:
		return nil, ErrLocked
	case p.quiz == nil:
		return nil, ErrNoQuiz
	case p.session != nil:
		return nil, ErrActive
	case p.quizID == 0:
		return nil, fmt.Errorf("can not start quiz, %w, got %q", ErrQuizID, p.quiz.ID)
	}

	opts = append(opts,
		quiz.WithLogger(p.log),
		quiz.OnComplete(p.complete),
	)

	session, err := quiz.NewSession(p.ctx, p.quiz.Questions, opts...)
	if err != nil {
		return nil, fmt.Errorf("can not start quiz, %w", err)
	}

	p.session = session

	return session, nil
}

// FinishQuiz закрывает текущую попытку, чтобы можно было начать новую.
func (p *Page) FinishQuiz() {
	p.mu.Lock()
	session := p.session
	p.session = nil
	p.mu.Unlock()

	if session != nil {
		session.Close()
	}
}

// Close закрывает попытку и ждёт фоновые сохранения.
func (p *Page) Close() {
	p.FinishQuiz()
	p.saves.Wait()
}

func (p *Page) complete(result quiz.Result) {
	record := &models.QuizResult{
		UserID:         p.userID,
		QuizID:         p.quizID,
		Score:          result.Score,
		TotalQuestions: result.Total,
		CompletedAt:    p.now(),
	}

	if p.sink == nil {
		return
	}

	p.saves.Add(1)
	go func() {
		defer p.saves.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), timeoutSave)
		defer cancel()

		err := p.sink.SaveResult(ctx, record)
		if err != nil {
			p.log.Error("failed to save quiz results", slog.String("attempt", result.AttemptID), slog.Any("error", err))
		} else {
			p.log.Info("quiz results saved", slog.Int("result", record.ID), slog.Int("score", record.Score))
		}

		if p.onSaved != nil {
			p.onSaved(record, err)
		}
	}()
}
