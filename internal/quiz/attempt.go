package quiz

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Attempt — конечный автомат одной попытки прохождения квиза.
// Не содержит таймеров: отсчёт времени приходит снаружи через Tick,
// поэтому автомат можно гонять синтетическими событиями.
// Attempt не потокобезопасен, сериализацию событий обеспечивает Session.
type Attempt struct {
	id        string
	questions []Question

	index      int
	answers    []int
	locked     []bool
	phase      Phase
	timeLeft   int
	wasCorrect bool
	timedOut   bool
	generation uint64

	score        int
	correctCount int
	emitted      bool
}

// NewAttempt создаёт попытку по фиксированному списку вопросов.
// Вопросы копируются и дальше не меняются.
func NewAttempt(questions []Question) (*Attempt, error) {
	if err := ValidateQuestions(questions); err != nil {
		return nil, fmt.Errorf("can not start attempt, %w", err)
	}

	qs := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}

	answers := make([]int, len(qs))
	for i := range answers {
		answers[i] = Unanswered
	}

	a := &Attempt{
		id:        uuid.NewString(),
		questions: qs,
		answers:   answers,
		locked:    make([]bool, len(qs)),
	}
	a.enterAnswering()

	return a, nil
}

// ID возвращает идентификатор попытки.
func (a *Attempt) ID() string {
	return a.id
}

// Phase возвращает текущую фазу.
func (a *Attempt) Phase() Phase {
	return a.phase
}

// Index возвращает индекс текущего вопроса.
func (a *Attempt) Index() int {
	return a.index
}

// TimeLeft возвращает остаток времени на текущий вопрос в секундах.
func (a *Attempt) TimeLeft() int {
	return a.timeLeft
}

// Scope возвращает область действия текущего таймера.
func (a *Attempt) Scope() Scope {
	return Scope{Index: a.index, Phase: a.phase, Generation: a.generation}
}

// Answers возвращает копию ответов.
func (a *Attempt) Answers() []int {
	return append([]int(nil), a.answers...)
}

// SelectOption выбирает вариант для текущего вопроса.
// Вне фазы Answering, для уже проверенного вопроса и для индекса вне диапазона ничего не делает.
func (a *Attempt) SelectOption(option int) bool {
	if a.phase != PhaseAnswering || a.locked[a.index] {
		return false
	}

	if option < 0 || option >= len(a.questions[a.index].Options) {
		return false
	}

	a.answers[a.index] = option

	return true
}

// Advance выполняет действие основной кнопки: "Check" в фазе Answering,
// "Next" или "Submit Quiz" в фазе Feedback.
func (a *Attempt) Advance() bool {
	switch a.phase {
	case PhaseAnswering:
		if !a.canCheck() {
			return false
		}

		a.enterFeedback(false)
	case PhaseFeedback:
		if a.isLast() {
			a.finish()
		} else {
			a.index++
			a.enterAnswering()
		}
	default:
		return false
	}

	return true
}

// Previous возвращает к предыдущему вопросу. Разрешено только в фазе Answering.
// Ответы не меняются, у вопроса снова полный бюджет времени.
func (a *Attempt) Previous() bool {
	if a.phase != PhaseAnswering || a.index == 0 {
		return false
	}

	a.index--
	a.enterAnswering()

	return true
}

// Tick отсчитывает одну секунду для таймера из scope.
// Тики устаревшего таймера игнорируются. Достижение нуля переводит
// вопрос в Feedback как таймаут.
func (a *Attempt) Tick(scope Scope) bool {
	if scope != a.Scope() || a.phase != PhaseAnswering {
		return false
	}

	a.timeLeft--
	if a.timeLeft <= 0 {
		a.timeLeft = 0
		a.enterFeedback(true)
	}

	return true
}

// TakeResult возвращает итог попытки. Итог отдаётся ровно один раз,
// после перехода в Results.
func (a *Attempt) TakeResult() (Result, bool) {
	if a.phase != PhaseResults || a.emitted {
		return Result{}, false
	}

	a.emitted = true

	return a.result(), true
}

// View возвращает снимок состояния.
func (a *Attempt) View() View {
	v := View{
		AttemptID: a.id,
		Index:     a.index,
		Total:     len(a.questions),
		Question:  a.questions[a.index],
		Selected:  a.answers[a.index],
		Phase:     a.phase,
		TimeLeft:  a.timeLeft,
		Progress:  float64(a.index+1) / float64(len(a.questions)),
	}

	switch a.phase {
	case PhaseAnswering:
		v.CanAdvance = a.canCheck()
		v.CanGoBack = a.index > 0
		v.Locked = a.locked[a.index]
		v.AdvanceLabel = LabelCheck
	case PhaseFeedback:
		v.WasCorrect = a.wasCorrect
		v.TimedOut = a.timedOut
		v.CanAdvance = true
		v.AdvanceLabel = LabelNext
		if a.isLast() {
			v.AdvanceLabel = LabelSubmit
		}
	case PhaseResults:
		v.Score = a.score
		v.CorrectCount = a.correctCount
	}

	return v
}

func (a *Attempt) canCheck() bool {
	return a.answers[a.index] != Unanswered || a.timeLeft == 0 || a.locked[a.index]
}

func (a *Attempt) isLast() bool {
	return a.index == len(a.questions)-1
}

func (a *Attempt) enterAnswering() {
	a.phase = PhaseAnswering
	a.timeLeft = QuestionSeconds
	a.wasCorrect = false
	a.timedOut = false
	a.generation++
}

func (a *Attempt) enterFeedback(timedOut bool) {
	a.phase = PhaseFeedback
	a.locked[a.index] = true
	a.timedOut = timedOut
	a.wasCorrect = !timedOut && a.answers[a.index] == a.questions[a.index].CorrectOptionIndex
	a.generation++
}

func (a *Attempt) finish() {
	a.correctCount = CountCorrect(a.questions, a.answers)
	a.score = Score(a.correctCount, len(a.questions))
	a.phase = PhaseResults
	a.generation++
}

func (a *Attempt) result() Result {
	return Result{
		AttemptID:    a.id,
		Answers:      a.Answers(),
		Score:        a.score,
		CorrectCount: a.correctCount,
		Total:        len(a.questions),
	}
}

// CountCorrect считает позиции, где ответ совпадает с правильным вариантом.
// Unanswered всегда считается неверным.
func CountCorrect(questions []Question, answers []int) int {
	correct := 0

	for i, q := range questions {
		if i < len(answers) && answers[i] != Unanswered && answers[i] == q.CorrectOptionIndex {
			correct++
		}
	}

	return correct
}

// Score возвращает процент правильных ответов, округлённый до целого.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(100 * float64(correct) / float64(total)))
}
