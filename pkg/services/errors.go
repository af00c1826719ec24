package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a lead submission failed.
type ErrorKind string

const (
	KindInvalidLead          ErrorKind = "INVALID_LEAD"
	KindConfigurationMissing ErrorKind = "CONFIGURATION_MISSING"
	KindNetworkUnreachable   ErrorKind = "NETWORK_UNREACHABLE"
	KindRemoteRejected       ErrorKind = "REMOTE_REJECTED"
	KindMalformedResponse    ErrorKind = "MALFORMED_RESPONSE"
)

const genericFailureMessage = "Failed to submit form. Please try again or contact support."

// SubmissionError is the only error type Submit returns. Target names the
// external system involved ("ghl" or "datastore"), Status its HTTP status.
type SubmissionError struct {
	Kind    ErrorKind
	Message string
	Target  string
	Status  int
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a submission error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Kind
	}
	return ""
}

// UserMessage is the single line shown above the email form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var subErr *SubmissionError
	if errors.As(err, &subErr) && subErr.Message != "" {
		return subErr.Message
	}
	return genericFailureMessage
}
