// Package models holds the persisted documents: prompt templates and
// evaluation records.
package models

import "time"

// Template is a reusable prompt body with a single {question} substitution point.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Template    string     `json:"template"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// QuestionResult is the outcome of one rubric question.
// Exactly one of Response and Error is set.
type QuestionResult struct {
	Question      string  `json:"question"`
	Response      *string `json:"response"`
	Error         *string `json:"error"`
	ErrorCategory string  `json:"error_category,omitempty"`
}

// Answered builds a successful result.
func Answered(question, response string) QuestionResult {
	return QuestionResult{Question: question, Response: &response}
}

// Failed builds a failed result.
func Failed(question, message, category string) QuestionResult {
	return QuestionResult{Question: question, Error: &message, ErrorCategory: category}
}

// Record is the outcome of one full rubric pass.
type Record struct {
	ID             string           `json:"id"`
	Timestamp      time.Time        `json:"timestamp"`
	FramesAnalyzed int              `json:"frames_analyzed"`
	FramesPath     string           `json:"frames_path"`
	TemplateID     string           `json:"template_id"`
	Model          string           `json:"model"`
	Results        []QuestionResult `json:"results"`
	Error          string           `json:"error,omitempty"`

	// Set by the caller before persisting.
	TemplateName string `json:"template_name,omitempty"`
	ModelLabel   string `json:"model_label,omitempty"`
}

// Errors counts the failed questions.
func (r Record) Errors() int {
	n := 0
	for _, res := range r.Results {
		if res.Error != nil {
			n++
		}
	}
	return n
}
