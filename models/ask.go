package models

import "time"

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the answer envelope returned by POST /ask.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ErrorResponse is the payload of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// AskEvent is published after each /ask call. It records the outcome, not the
// question text.
type AskEvent struct {
	QuestionLength int       `json:"question_length"`
	Status         int       `json:"status"`
	DurationMs     int64     `json:"duration_ms"`
	OccurredAt     time.Time `json:"occurred_at"`
}
