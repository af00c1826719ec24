package services

import (
	"errors"
	"time"

	"profit-calculator/pkg/savings"
)

var (
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrAlreadyCalculated  = errors.New("results already calculated for this session")
	ErrNotCalculated      = errors.New("no calculation for this session yet")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrAlreadySubmitted   = errors.New("this lead was already submitted")
)

// Stage is the screen a visitor is on. The only transition is
// StageCollecting -> StageShowingResults.
type Stage int

const (
	StageCollecting Stage = iota
	StageShowingResults
)

func (s Stage) String() string {
	switch s {
	case StageCollecting:
		return "collecting"
	case StageShowingResults:
		return "showing-results"
	default:
		return "unknown"
	}
}

// SubmitState tracks the email form independently of the Stage.
type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitSubmitting SubmitState = "submitting"
	SubmitSubmitted  SubmitState = "submitted"
	SubmitErrored    SubmitState = "errored"
)

// Session is one visitor's pass through the calculator.
type Session struct {
	ID          string         `json:"id"`
	Stage       Stage          `json:"stage"`
	Input       *savings.Input `json:"input,omitempty"`
	SubmitState SubmitState    `json:"submitState"`
	ContactID   string         `json:"contactId,omitempty"`
	LastError   string         `json:"lastError,omitempty"`
	ExpiresAt   time.Time      `json:"expiresAt"`
}

func newSession(id string, ttl time.Duration) *Session {
	return &Session{
		ID:          id,
		Stage:       StageCollecting,
		SubmitState: SubmitIdle,
		ExpiresAt:   time.Now().Add(ttl),
	}
}

// Calculate freezes the input and moves to the results screen. It fires once.
func (s *Session) Calculate(in savings.Input) error {
	if s.Stage != StageCollecting {
		return ErrAlreadyCalculated
	}
	frozen := in
	s.Input = &frozen
	s.Stage = StageShowingResults
	return nil
}

// BeginSubmit claims the single in-flight submission slot.
func (s *Session) BeginSubmit() error {
	if s.Stage != StageShowingResults || s.Input == nil {
		return ErrNotCalculated
	}
	switch s.SubmitState {
	case SubmitSubmitting:
		return ErrSubmissionInFlight
	case SubmitSubmitted:
		return ErrAlreadySubmitted
	}
	s.SubmitState = SubmitSubmitting
	s.LastError = ""
	return nil
}

// FinishSubmit records the outcome of the submission started by BeginSubmit.
func (s *Session) FinishSubmit(contactID string, err error) {
	if s.SubmitState != SubmitSubmitting {
		return
	}
	if err != nil {
		s.SubmitState = SubmitErrored
		s.LastError = UserMessage(err)
		return
	}
	s.SubmitState = SubmitSubmitted
	s.ContactID = contactID
}

func (s *Session) clone() *Session {
	c := *s
	if s.Input != nil {
		in := *s.Input
		c.Input = &in
	}
	return &c
}
