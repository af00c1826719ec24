package services

import (
	"context"

	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/metrics"
	"profit-calculator/pkg/savings"
)

// Wizard drives a visitor from the calculator screen to the results screen
// and runs the lead submission from there.
type Wizard struct {
	sessions SessionStore
	leads    LeadService
	logger   logger.Logger
}

func NewWizard(sessions SessionStore, leads LeadService, log logger.Logger) *Wizard {
	return &Wizard{
		sessions: sessions,
		leads:    leads,
		logger:   log.WithFields(map[string]interface{}{"service": "wizard"}),
	}
}

// Start opens a fresh session on the calculator screen.
func (w *Wizard) Start(ctx context.Context) (*Session, error) {
	return w.sessions.Create(ctx)
}

func (w *Wizard) Session(ctx context.Context, id string) (*Session, error) {
	return w.sessions.Get(ctx, id)
}

// Calculate freezes the input on the session and shows results.
func (w *Wizard) Calculate(ctx context.Context, id string, in savings.Input) (*Session, error) {
	s, err := w.sessions.Update(ctx, id, func(s *Session) error {
		return s.Calculate(in)
	})
	if err != nil {
		return s, err
	}

	metrics.Calculations.Inc()
	w.logger.Debug("calculation frozen", map[string]interface{}{
		"session":      id,
		"annualImpact": savings.Compute(*s.Input).AnnualImpact,
	})
	return s, nil
}

// SubmitLead sends the session's frozen input with the email. A second call
// while the first is running fails with ErrSubmissionInFlight and makes no
// network call. Cancelling ctx does not stop a claimed submission.
// The returned error is either a state error or a *SubmissionError.
func (w *Wizard) SubmitLead(ctx context.Context, id, email string) (*Session, error) {
	claimed, err := w.sessions.Update(ctx, id, func(s *Session) error {
		return s.BeginSubmit()
	})
	if err != nil {
		return claimed, err
	}

	// A claimed submission runs to completion even if ctx is cancelled.
	detached := context.WithoutCancel(ctx)
	contactID, submitErr := w.leads.Submit(detached, email, *claimed.Input)

	final, err := w.sessions.Update(detached, id, func(s *Session) error {
		s.FinishSubmit(contactID, submitErr)
		return nil
	})
	if err != nil {
		w.logger.WithError(err).Error("failed to record submission outcome", map[string]interface{}{"session": id})
		if submitErr != nil {
			return claimed, submitErr
		}
		return claimed, err
	}
	return final, submitErr
}
