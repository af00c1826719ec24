package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"profit-calculator/pkg/clients/rest"
	"profit-calculator/pkg/config"
	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/models"
)

const serviceName = "supabase"

// Client inserts submission rows through the Supabase REST (PostgREST) API.
type Client struct {
	apiKey     string
	baseURL    string
	table      string
	httpClient rest.HTTPDoer
	logger     logger.Logger
}

// NewClient creates a new Supabase client
func NewClient(cfg config.SupabaseConfig, log logger.Logger, httpClient rest.HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiKey:     cfg.Key,
		baseURL:    cfg.URL,
		table:      cfg.Table,
		httpClient: httpClient,
		logger:     log.WithFields(map[string]interface{}{"client": serviceName}),
	}
}

// InsertSubmission writes one row. created_at is assigned by the database.
func (c *Client) InsertSubmission(ctx context.Context, record models.SubmissionRecord) error {
	_, err := rest.Do(ctx, c.httpClient, rest.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(c.table)),
		Headers: map[string]string{
			"apikey":        c.apiKey,
			"Authorization": "Bearer " + c.apiKey,
			"Prefer":        "return=minimal",
		},
		Payload: []models.SubmissionRecord{record},
	})
	if err != nil {
		return err
	}

	c.logger.Info("stored submission", map[string]interface{}{
		"table":     c.table,
		"contactId": record.GHLContactID,
	})
	return nil
}
