// Package store persists a mirror of each accepted lead.
package store

import (
	"context"
	"errors"

	"profit-calculator/pkg/models"
)

// ErrInsertFailed wraps any failure to write a submission row.
var ErrInsertFailed = errors.New("submission insert failed")

// SubmissionStore writes one row per accepted lead.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, record models.SubmissionRecord) error
}
