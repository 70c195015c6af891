package model

import "time"

// SessionSnapshot is the serializable state of an intake wizard
type SessionSnapshot struct {
	ID         string            `json:"id"`
	Department string            `json:"department"`
	Language   string            `json:"language"`
	Step       int               `json:"step"`
	Responses  Responses         `json:"responses"`
	Transcript Transcript        `json:"transcript"`
	Record     *CompletionRecord `json:"record,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// SessionView is the API representation of an intake session
type SessionView struct {
	ID         string            `json:"id"`
	Department string            `json:"department"`
	Language   string            `json:"language"`
	Step       int               `json:"step"`
	Total      int               `json:"total"`
	Complete   bool              `json:"complete"`
	Busy       bool              `json:"busy"`
	Responses  Responses         `json:"responses"`
	Transcript Transcript        `json:"transcript"`
	Record     *CompletionRecord `json:"record,omitempty"`
}

// StartSessionRequest is the request body for starting an intake session
type StartSessionRequest struct {
	Department string `json:"department"`
	Language   string `json:"language"`
}

// SubmitAnswerRequest is the request body for answering the active question
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}
