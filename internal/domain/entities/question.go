// Package entities contains domain entities used across the application.
package entities

import "strings"

// UnansweredSentinel marks a question that is in the table but has no answer yet.
const UnansweredSentinel = "no answer added yet"

// QuestionRecord is one row of the master question table.
// Records are immutable once loaded.
type QuestionRecord struct {
	ID       string `json:"id"`       // question number, unique within the master table
	Question string `json:"question"` // question text
	Answer   string `json:"answer"`   // answer text, empty when unanswered
}

// NewQuestionRecord builds a record, normalising blank answers and the
// sentinel text to the unanswered state.
func NewQuestionRecord(id, question, answer string) QuestionRecord {
	answer = strings.TrimSpace(answer)
	if answer == UnansweredSentinel {
		answer = ""
	}

	return QuestionRecord{
		ID:       strings.TrimSpace(id),
		Question: question,
		Answer:   answer,
	}
}

// Answered reports whether the record carries an answer.
func (r QuestionRecord) Answered() bool {
	return r.Answer != ""
}

// DisplayAnswer returns the answer text or the unanswered sentinel.
func (r QuestionRecord) DisplayAnswer() string {
	if !r.Answered() {
		return UnansweredSentinel
	}
	return r.Answer
}
