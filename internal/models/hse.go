package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type HseAnswer string

const (
	AnswerYes HseAnswer = "yes"
	AnswerNo  HseAnswer = "no"
	AnswerNA  HseAnswer = "na"
)

func ParseHseAnswer(s string) (HseAnswer, error) {
	switch a := HseAnswer(s); a {
	case AnswerYes, AnswerNo, AnswerNA:
		return a, nil
	}
	return "", fmt.Errorf("invalid answer %q: must be yes, no or na", s)
}

type HseTopic struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	SortOrder int           `json:"sort_order"`
	Active    bool          `json:"active"`
	Questions []HseQuestion `json:"questions,omitempty"`
}

type HseQuestion struct {
	ID        uuid.UUID `json:"id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Prompt    string    `json:"prompt"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
}

type HseResponse struct {
	TaskID      uuid.UUID `json:"task_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	Answer      HseAnswer `json:"answer"`
	Comment     string    `json:"comment,omitempty"`
	RespondedBy uuid.UUID `json:"responded_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HseSummary counts a jobcard's checklist progress over active questions.
type HseSummary struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	No       int `json:"no"`
}

func (s HseSummary) Complete() bool {
	return s.Total > 0 && s.Answered == s.Total
}
