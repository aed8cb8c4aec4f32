package quiz

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
)

// LoadQuiz загружает квиз из JSON и проверяет его.
func LoadQuiz(data []byte) (*Quiz, error) {
	var quiz Quiz

	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("can not unmarshal quiz, %w", err)
	}

	if err := ValidateQuiz(&quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

// ExportCSV экспортирует разбор попытки по вопросам в CSV.
func ExportCSV(questions []Question, result Result) ([]byte, error) {
	if len(result.Answers) != len(questions) {
		return nil, fmt.Errorf("%w: %d answers for %d questions", ErrInvalidQuiz, len(result.Answers), len(questions))
	}

	rows := make([][]string, 0, len(questions)+2)
	rows = append(rows, []string{
		"Index",
		"Question",
		"Chosen",
		"Correct",
		"IsCorrect",
	})

	for i, q := range questions {
		chosen := result.Answers[i]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			q.Text,
			IndexToLetter(chosen),
			IndexToLetter(q.CorrectOptionIndex),
			strconv.FormatBool(chosen != Unanswered && chosen == q.CorrectOptionIndex),
		})
	}

	rows = append(rows, []string{
		"Score",
		strconv.Itoa(result.Score),
		"",
		fmt.Sprintf("%d/%d", result.CorrectCount, result.Total),
		"",
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("can not write csv, %w", err)
	}

	return buf.Bytes(), nil
}
