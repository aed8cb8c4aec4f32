package course

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/coursedeck/internal/client"
	"github.com/letsssgooo/coursedeck/internal/countdown"
	"github.com/letsssgooo/coursedeck/internal/domain/models"
	"github.com/letsssgooo/coursedeck/internal/quiz"
	"github.com/letsssgooo/coursedeck/internal/storage"
)

type fakeBackend struct {
	courses      []models.Course
	quizzes      []client.Quiz
	questions    map[int][]client.Question
	questionsErr error
}

func (f *fakeBackend) ListCourses(context.Context) ([]models.Course, error) {
	return f.courses, nil
}

func (f *fakeBackend) ListQuizzes(context.Context) ([]client.Quiz, error) {
	return f.quizzes, nil
}

func (f *fakeBackend) ListQuestions(_ context.Context, quizID int) ([]client.Question, error) {
	if f.questionsErr != nil {
		return nil, f.questionsErr
	}

	return f.questions[quizID], nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		courses: []models.Course{
			{ID: 2, Title: "SQL"},
			{ID: 1, Title: "Go", PDFURL: "http://backend/pdfs/go.pdf"},
			{ID: 3, Title: "Broken quiz"},
		},
		quizzes: []client.Quiz{
			{ID: 10, CourseID: 1, Title: "Go basics"},
			{ID: 11, CourseID: 1, Title: "Second quiz of the same course"},
			{ID: 12, CourseID: 3, Title: "No questions"},
		},
		questions: map[int][]client.Question{
			10: {
				{ID: 1, QuizID: 10, Text: "2+2?", Options: []string{"3", "4"}, CorrectOptionIndex: 1},
				{ID: 2, QuizID: 10, Text: "Go keyword?", Options: []string{"go", "spawn"}, CorrectOptionIndex: 0},
			},
		},
	}
}

func TestCatalog_Load(t *testing.T) {
	cat := NewCatalog(newBackend(), nil)
	require.NoError(t, cat.Load(context.Background()))

	courses := cat.Courses()
	require.Len(t, courses, 3)
	assert.Equal(t, 1, courses[0].ID)
	assert.Equal(t, 2, courses[1].ID)

	course, err := cat.Course(1)
	require.NoError(t, err)
	assert.Equal(t, "Go", course.Title)

	_, err = cat.Course(42)
	assert.ErrorIs(t, err, ErrNotFound)

	q, ok := cat.QuizForCourse(1)
	require.True(t, ok)
	assert.Equal(t, "10", q.ID)
	assert.Equal(t, "1", q.CourseID)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, "Go keyword?", q.Questions[1].Text)

	_, ok = cat.QuizForCourse(2)
	assert.False(t, ok)

	_, ok = cat.QuizForCourse(3)
	assert.False(t, ok, "quiz without questions is skipped")
}

func TestCatalog_LoadUnauthorized(t *testing.T) {
	backend := newBackend()
	backend.questionsErr = client.ErrUnauthorized

	cat := NewCatalog(backend, nil)
	assert.ErrorIs(t, cat.Load(context.Background()), client.ErrUnauthorized)
}

func TestCatalog_LoadSkipsBrokenQuestions(t *testing.T) {
	backend := newBackend()
	backend.questionsErr = errors.New("status 500")

	cat := NewCatalog(backend, nil)
	require.NoError(t, cat.Load(context.Background()))

	_, ok := cat.QuizForCourse(1)
	assert.False(t, ok)
}

func TestCatalog_Put(t *testing.T) {
	cat := NewCatalog(nil, nil)

	err := cat.Put(models.Course{ID: 1}, &quiz.Quiz{Title: "Empty"})
	assert.ErrorIs(t, err, quiz.ErrInvalidQuiz)

	q := &quiz.Quiz{Title: "Local", Questions: []quiz.Question{{Text: "q", Options: []string{"a", "b"}}}}
	require.NoError(t, cat.Put(models.Course{ID: 1, Title: "Local"}, q))

	got, ok := cat.QuizForCourse(1)
	require.True(t, ok)
	assert.Same(t, q, got)
}

type blockingSink struct {
	mu      sync.Mutex
	release chan struct{}
	saved   []models.QuizResult
}

func (b *blockingSink) SaveResult(ctx context.Context, r *models.QuizResult) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved = append(b.saved, *r)

	return nil
}

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:       "10",
		CourseID: "1",
		Title:    "Go basics",
		Questions: []quiz.Question{
			{ID: "1", Text: "2+2?", Options: []string{"3", "4"}, CorrectOptionIndex: 1},
			{ID: "2", Text: "Go keyword?", Options: []string{"go", "spawn"}, CorrectOptionIndex: 0},
		},
	}
}

func TestPage_Gate(t *testing.T) {
	p := NewPage(context.Background(), models.Course{ID: 1}, testQuiz(), 7, storage.NewMemoryStorage())
	defer p.Close()

	assert.False(t, p.CanTakeQuiz())
	_, err := p.StartQuiz()
	assert.ErrorIs(t, err, ErrLocked)

	p.Unlock()
	p.Unlock()
	assert.True(t, p.Unlocked())
	assert.True(t, p.CanTakeQuiz())

	s, err := p.StartQuiz(quiz.WithClock(countdown.NewManualClock()))
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = p.StartQuiz()
	assert.ErrorIs(t, err, ErrActive)

	p.FinishQuiz()
	_, err = p.StartQuiz(quiz.WithClock(countdown.NewManualClock()))
	assert.NoError(t, err)
}

func TestPage_NoQuiz(t *testing.T) {
	p := NewPage(context.Background(), models.Course{ID: 2}, nil, 7, nil)
	p.Unlock()

	assert.False(t, p.CanTakeQuiz())
	_, err := p.StartQuiz()
	assert.ErrorIs(t, err, ErrNoQuiz)
}

func TestPage_SavesResultInBackground(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	completed := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)

	saved := make(chan error, 1)
	p := NewPage(context.Background(), models.Course{ID: 1}, testQuiz(), 7, sink,
		WithNow(func() time.Time { return completed }),
		OnSaved(func(_ *models.QuizResult, err error) { saved <- err }),
	)
	p.Unlock()

	s, err := p.StartQuiz(quiz.WithClock(countdown.NewManualClock()))
	require.NoError(t, err)

	require.True(t, s.SelectOption(1))
	require.True(t, s.Advance())
	require.True(t, s.Advance())
	require.True(t, s.SelectOption(1))
	require.True(t, s.Advance())

	// завершение попытки не ждёт сохранения
	require.True(t, s.Advance())
	assert.Equal(t, quiz.PhaseResults, s.View().Phase)
	assert.Equal(t, 50, s.View().Score)

	close(sink.release)
	require.NoError(t, <-saved)
	p.Close()

	require.Len(t, sink.saved, 1)
	assert.Equal(t, models.QuizResult{
		UserID:         7,
		QuizID:         10,
		Score:          50,
		TotalQuestions: 2,
		CompletedAt:    completed,
	}, sink.saved[0])
}

func TestPage_SaveFailureIsLogged(t *testing.T) {
	saved := make(chan error, 1)
	p := NewPage(context.Background(), models.Course{ID: 1}, testQuiz(), 7, storage.NewMemoryStorage(),
		WithNow(func() time.Time { return time.Time{} }),
		OnSaved(func(_ *models.QuizResult, err error) { saved <- err }),
	)
	p.Unlock()

	s, err := p.StartQuiz(quiz.WithClock(countdown.NewManualClock()))
	require.NoError(t, err)

	for _, option := range []int{1, 0} {
		require.True(t, s.SelectOption(option))
		require.True(t, s.Advance())
		require.True(t, s.Advance())
	}

	assert.ErrorIs(t, <-saved, storage.ErrInvalidResult)
	assert.Equal(t, 100, s.View().Score)
	p.Close()
}

func TestPage_RejectsNonNumericQuizID(t *testing.T) {
	q, err := quiz.LoadQuiz([]byte(`{
		"id": "intro-quiz",
		"title": "Intro",
		"questions": [{"id": "1", "text": "Go keyword?", "options": ["go", "spawn"], "correct_option_index": 0}]
	}`))
	require.NoError(t, err)

	store := storage.NewMemoryStorage()
	p := NewPage(context.Background(), models.Course{ID: 1}, q, 7, store)
	defer p.Close()
	p.Unlock()

	_, err = p.StartQuiz(quiz.WithClock(countdown.NewManualClock()))
	assert.ErrorIs(t, err, ErrQuizID)

	results, err := store.ListResults(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestParseQuizID(t *testing.T) {
	tests := []struct {
		id      string
		want    int
		wantErr bool
	}{
		{"10", 10, false},
		{"intro-quiz", 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseQuizID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrQuizID)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
