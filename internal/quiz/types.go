package quiz

// Unanswered — значение-страж для вопроса без выбранного варианта.
// Никогда не совпадает с корректным индексом варианта.
const Unanswered = -1

// QuestionSeconds — бюджет времени на один вопрос в секундах.
const QuestionSeconds = 60

// Подписи кнопки перехода.
const (
	LabelCheck  = "Check"
	LabelNext   = "Next"
	LabelSubmit = "Submit Quiz"
)

// Question представляет вопрос квиза.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// Quiz представляет квиз курса.
type Quiz struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"course_id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Phase — фаза текущего вопроса попытки.
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseFeedback  Phase = "feedback"
	PhaseResults   Phase = "results"
)

// Scope — пара (вопрос, фаза), к которой привязан таймер.
// Generation меняется при каждом переходе, поэтому повторный заход
// на тот же вопрос даёт новый Scope.
type Scope struct {
	Index      int
	Phase      Phase
	Generation uint64
}

// Result — итог попытки, отдаётся наружу ровно один раз.
type Result struct {
	AttemptID    string
	Answers      []int
	Score        int
	CorrectCount int
	Total        int
}

// View — снимок состояния попытки для отрисовки.
type View struct {
	AttemptID string
	Index     int
	Total     int
	Question  Question
	Selected  int
	Phase     Phase
	TimeLeft  int

	// WasCorrect и TimedOut имеют смысл в фазе Feedback.
	WasCorrect bool
	TimedOut   bool

	// Locked — ответ на вопрос уже проверен и не меняется (вопрос открыт снова через Previous).
	Locked bool

	CanAdvance   bool
	CanGoBack    bool
	AdvanceLabel string
	Progress     float64

	// Заполняются в фазе Results.
	Score        int
	CorrectCount int
}
