package quiz

import (
	"errors"
	"fmt"
)

// ErrInvalidQuiz возвращается, если квиз или его вопросы некорректны.
var ErrInvalidQuiz = errors.New("invalid quiz")

// ValidateQuiz проверяет на корректность структуру квиза.
func ValidateQuiz(quiz *Quiz) error {
	if quiz == nil {
		return fmt.Errorf("%w: quiz object is nil", ErrInvalidQuiz)
	}

	if quiz.Title == "" {
		return fmt.Errorf("%w: missing field title", ErrInvalidQuiz)
	}

	return ValidateQuestions(quiz.Questions)
}

// ValidateQuestions проверяет список вопросов перед началом попытки.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: need at least one question", ErrInvalidQuiz)
	}

	for i, question := range questions {
		if question.Text == "" {
			return fmt.Errorf("%w: missing field text of %d question", ErrInvalidQuiz, i)
		}

		if len(question.Options) < 2 {
			return fmt.Errorf("%w: amount of options must be at least two in %d question", ErrInvalidQuiz, i)
		}

		if question.CorrectOptionIndex < 0 {
			return fmt.Errorf("%w: index of correct answer must not be negative in %d question", ErrInvalidQuiz, i)
		}

		if question.CorrectOptionIndex >= len(question.Options) {
			return fmt.Errorf("%w: index of correct answer in %d question is out of range", ErrInvalidQuiz, i)
		}
	}

	return nil
}
