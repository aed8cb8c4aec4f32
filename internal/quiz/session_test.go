package quiz

import (
	"context"
	"encoding/csv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/coursedeck/internal/countdown"
)

const waitFor = 2 * time.Second

type recorder struct {
	mu      sync.Mutex
	results []Result
	views   []View
}

func (r *recorder) complete(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) change(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) resultCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func newTestSession(t *testing.T, questions []Question) (*Session, *countdown.ManualClock, *recorder) {
	t.Helper()

	clock := countdown.NewManualClock()
	rec := &recorder{}

	s, err := NewSession(context.Background(), questions,
		WithClock(clock),
		OnComplete(rec.complete),
		OnChange(rec.change),
	)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s, clock, rec
}

func TestSession_SingleTimer(t *testing.T) {
	s, clock, _ := newTestSession(t, threeQuestions())

	require.Equal(t, 1, clock.Tickers())

	clock.Tick()
	require.Eventually(t, func() bool { return s.View().TimeLeft == QuestionSeconds-1 }, waitFor, time.Millisecond)

	require.True(t, s.SelectOption(1))
	require.Equal(t, 1, clock.Tickers(), "selection keeps the timer")

	require.True(t, s.Advance())
	require.Eventually(t, func() bool { return clock.Tickers() == 0 }, waitFor, time.Millisecond,
		"no timer in feedback")

	require.True(t, s.Advance())
	require.Eventually(t, func() bool { return clock.Tickers() == 1 }, waitFor, time.Millisecond)
	assert.Equal(t, QuestionSeconds, s.View().TimeLeft)

	require.True(t, s.SelectOption(0))
	require.True(t, s.Previous())
	require.Eventually(t, func() bool { return clock.Tickers() == 1 }, waitFor, time.Millisecond)

	clock.Tick()
	require.Eventually(t, func() bool { return s.View().TimeLeft == QuestionSeconds-1 }, waitFor, time.Millisecond)
	assert.Equal(t, 0, s.View().Index)
}

func TestSession_TimeoutForcesFeedback(t *testing.T) {
	s, clock, rec := newTestSession(t, threeQuestions())

	for i := 0; i < QuestionSeconds; i++ {
		clock.Tick()
	}

	require.Eventually(t, func() bool { return s.View().Phase == PhaseFeedback }, waitFor, time.Millisecond)

	v := s.View()
	assert.True(t, v.TimedOut)
	assert.False(t, v.WasCorrect)
	assert.Equal(t, Unanswered, v.Selected)
	require.Eventually(t, func() bool { return clock.Tickers() == 0 }, waitFor, time.Millisecond)

	// лишние тики не двигают состояние
	clock.Tick()
	assert.Equal(t, PhaseFeedback, s.View().Phase)

	require.True(t, s.Advance())
	require.True(t, s.SelectOption(0))
	require.True(t, s.Advance())
	require.True(t, s.Advance())
	require.True(t, s.SelectOption(2))
	require.True(t, s.Advance())
	require.True(t, s.Advance())

	require.Equal(t, 1, rec.resultCount())
	assert.Equal(t, []int{Unanswered, 0, 2}, rec.results[0].Answers)
	assert.Equal(t, 67, rec.results[0].Score)
}

func TestSession_CompleteOnce(t *testing.T) {
	s, clock, rec := newTestSession(t, threeQuestions())

	for _, option := range []int{1, 0, 2} {
		require.True(t, s.SelectOption(option))
		require.True(t, s.Advance())
		require.True(t, s.Advance())
	}

	assert.False(t, s.Advance())
	assert.False(t, s.Previous())

	require.Equal(t, 1, rec.resultCount())
	assert.Equal(t, 100, rec.results[0].Score)
	assert.Equal(t, PhaseResults, s.View().Phase)
	require.Eventually(t, func() bool { return clock.Tickers() == 0 }, waitFor, time.Millisecond)

	rec.mu.Lock()
	last := rec.views[len(rec.views)-1]
	rec.mu.Unlock()
	assert.Equal(t, PhaseResults, last.Phase)
	assert.Equal(t, 100, last.Score)
}

func TestSession_Close(t *testing.T) {
	s, clock, rec := newTestSession(t, threeQuestions())

	s.Close()
	s.Close()

	require.Eventually(t, func() bool { return clock.Tickers() == 0 }, waitFor, time.Millisecond)

	assert.False(t, s.SelectOption(1))
	assert.False(t, s.Advance())
	assert.Equal(t, QuestionSeconds, s.View().TimeLeft)
	assert.Equal(t, 0, rec.resultCount())
}

func TestSession_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := countdown.NewManualClock()

	s, err := NewSession(ctx, threeQuestions(), WithClock(clock))
	require.NoError(t, err)
	defer s.Close()

	cancel()

	require.Eventually(t, func() bool { return clock.Tickers() == 0 }, waitFor, time.Millisecond)
}

func TestSession_Invalid(t *testing.T) {
	s, err := NewSession(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidQuiz)
	assert.Nil(t, s)
}

func TestExportCSV(t *testing.T) {
	questions := threeQuestions()
	result := Result{
		Answers:      []int{1, 1, Unanswered},
		Score:        33,
		CorrectCount: 1,
		Total:        3,
	}

	data, err := ExportCSV(questions, result)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"Index", "Question", "Chosen", "Correct", "IsCorrect"}, rows[0])
	assert.Equal(t, []string{"1", "2+2?", "B", "B", "true"}, rows[1])
	assert.Equal(t, []string{"2", "Capital of France?", "B", "A", "false"}, rows[2])
	assert.Equal(t, []string{"3", "Go keyword for goroutine?", "", "C", "false"}, rows[3])
	assert.Equal(t, []string{"Score", "33", "", "1/3", ""}, rows[4])
}

func TestExportCSV_Mismatch(t *testing.T) {
	_, err := ExportCSV(threeQuestions(), Result{Answers: []int{1}})
	assert.ErrorIs(t, err, ErrInvalidQuiz)
}

func TestLoadQuiz(t *testing.T) {
	data := []byte(`{
		"id": "7",
		"course_id": "3",
		"title": "Basics",
		"questions": [
			{"id": "1", "text": "2+2?", "options": ["3", "4"], "correct_option_index": 1}
		]
	}`)

	q, err := LoadQuiz(data)
	require.NoError(t, err)
	assert.Equal(t, "Basics", q.Title)
	assert.Equal(t, "3", q.CourseID)
	require.Len(t, q.Questions, 1)
	assert.Equal(t, 1, q.Questions[0].CorrectOptionIndex)

	_, err = LoadQuiz([]byte(`{invalid json}`))
	assert.Error(t, err)

	_, err = LoadQuiz([]byte(`{"title": "Empty", "questions": []}`))
	assert.ErrorIs(t, err, ErrInvalidQuiz)
}
