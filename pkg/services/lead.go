package services

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"profit-calculator/pkg/clients/ghl"
	"profit-calculator/pkg/clients/rest"
	"profit-calculator/pkg/config"
	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/metrics"
	"profit-calculator/pkg/models"
	"profit-calculator/pkg/savings"
	"profit-calculator/pkg/store"
	"profit-calculator/pkg/utils"
)

// LeadService forwards captured leads to the CRM and the optional datastore.
type LeadService interface {
	Submit(ctx context.Context, email string, input savings.Input) (string, error)
	UpdateLead(ctx context.Context, contactID string, update models.LeadUpdateRequest) error
}

type leadServiceImpl struct {
	crm    ghl.Client
	store  store.SubmissionStore
	config config.GHLConfig
	logger logger.Logger
}

// NewLeadService wires the CRM client and datastore. submissions may be nil,
// in which case the datastore step is skipped.
func NewLeadService(crm ghl.Client, submissions store.SubmissionStore, cfg config.GHLConfig, log logger.Logger) LeadService {
	return &leadServiceImpl{
		crm:    crm,
		store:  submissions,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"service": "leads"}),
	}
}

// Submit creates the CRM contact and mirrors it to the datastore.
// Both steps must succeed; nothing is retried.
func (s *leadServiceImpl) Submit(ctx context.Context, email string, input savings.Input) (string, error) {
	start := time.Now()
	contactID, err := s.submit(ctx, email, input)
	metrics.LeadSubmissionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LeadSubmissions.WithLabelValues(string(KindOf(err))).Inc()
		s.logger.WithError(err).Warn("lead submission failed", map[string]interface{}{
			"emailHash": utils.HashEmail(email),
			"kind":      KindOf(err),
		})
		return "", err
	}

	metrics.LeadSubmissions.WithLabelValues("success").Inc()
	s.logger.Info("lead submitted", map[string]interface{}{
		"emailHash": utils.HashEmail(email),
		"contactId": contactID,
	})
	return contactID, nil
}

func (s *leadServiceImpl) submit(ctx context.Context, email string, input savings.Input) (string, error) {
	if err := s.config.Validate(); err != nil {
		return "", &SubmissionError{Kind: KindConfigurationMissing, Message: err.Error(), Err: err}
	}

	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return "", &SubmissionError{Kind: KindInvalidLead, Message: "Please enter a valid email address.", Err: err}
	}

	input = savings.Normalize(input)
	lead := models.Lead{
		Email:        email,
		Input:        input,
		AnnualImpact: savings.Compute(input).AnnualImpact,
	}

	contactID, err := s.crm.CreateContact(ctx, s.contactRequest(lead))
	if err != nil {
		return "", classify(err, "ghl")
	}

	if s.store != nil {
		if err := s.store.InsertSubmission(ctx, models.NewSubmissionRecord(lead, contactID)); err != nil {
			return "", classify(err, "datastore")
		}
	}

	return contactID, nil
}

func (s *leadServiceImpl) contactRequest(lead models.Lead) ghl.ContactRequest {
	f := s.config.Fields
	fields := map[string]string{
		f.MonthlyLeads:     formatNumber(lead.Input.MonthlyLeads),
		f.LeadValue:        formatNumber(lead.Input.LeadValue),
		f.OperationalCosts: formatNumber(lead.Input.OperationalCosts),
		f.AdminHours:       formatNumber(lead.Input.AdminHours),
		f.AnnualSavings:    formatNumber(lead.AnnualImpact),
	}
	if lead.Input.MarketingSpend != nil {
		fields[f.MarketingSpend] = formatNumber(*lead.Input.MarketingSpend)
	}
	if lead.Input.ChurnRate != nil {
		fields[f.ChurnRate] = formatNumber(*lead.Input.ChurnRate)
	}

	return ghl.ContactRequest{
		Email:        lead.Email,
		CustomFields: fields,
		LocationID:   s.config.LocationID,
		Tags:         []string{s.config.Tag},
	}
}

// UpdateLead changes only the custom fields present in the update.
func (s *leadServiceImpl) UpdateLead(ctx context.Context, contactID string, update models.LeadUpdateRequest) error {
	if err := s.config.Validate(); err != nil {
		return &SubmissionError{Kind: KindConfigurationMissing, Message: err.Error(), Err: err}
	}
	if strings.TrimSpace(contactID) == "" {
		return &SubmissionError{Kind: KindInvalidLead, Message: "contact id is required"}
	}

	f := s.config.Fields
	fields := map[string]string{}
	for name, v := range map[string]*float64{
		f.MonthlyLeads:     update.MonthlyLeads,
		f.LeadValue:        update.LeadValue,
		f.OperationalCosts: update.OperationalCosts,
		f.AdminHours:       update.AdminHours,
		f.MarketingSpend:   update.MarketingSpend,
		f.ChurnRate:        update.ChurnRate,
		f.AnnualSavings:    update.AnnualSavings,
	} {
		if v != nil && name != "" {
			fields[name] = formatNumber(savings.Clamp(*v))
		}
	}
	if len(fields) == 0 {
		return &SubmissionError{Kind: KindInvalidLead, Message: "no fields to update"}
	}

	err := s.crm.UpdateContact(ctx, contactID, ghl.UpdateRequest{
		CustomFields: fields,
		LocationID:   s.config.LocationID,
	})
	if err != nil {
		return classify(err, "ghl")
	}
	return nil
}

// classify maps client errors onto submission error kinds.
func classify(err error, target string) error {
	var apiErr *rest.APIError
	var transportErr *rest.TransportError

	switch {
	case errors.As(err, &apiErr):
		return &SubmissionError{Kind: KindRemoteRejected, Message: apiErr.Message, Target: target, Status: apiErr.StatusCode, Err: err}
	case errors.As(err, &transportErr):
		return &SubmissionError{Kind: KindNetworkUnreachable, Message: "Could not reach the server. Please check your connection and try again.", Target: target, Err: err}
	case errors.Is(err, ghl.ErrMissingContactID):
		return &SubmissionError{Kind: KindMalformedResponse, Message: ghl.ErrMissingContactID.Error(), Target: target, Err: err}
	case errors.Is(err, rest.ErrMalformedResponse):
		return &SubmissionError{Kind: KindMalformedResponse, Message: "Unexpected response from " + target, Target: target, Err: err}
	case errors.Is(err, store.ErrInsertFailed):
		return &SubmissionError{Kind: KindRemoteRejected, Message: "We could not save your submission. Please try again.", Target: target, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &SubmissionError{Kind: KindNetworkUnreachable, Message: "The request was interrupted. Please try again.", Target: target, Err: err}
	default:
		return &SubmissionError{Kind: KindRemoteRejected, Message: genericFailureMessage, Target: target, Err: err}
	}
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	if addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return errors.New("invalid email domain")
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
