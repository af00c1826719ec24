package ghl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"profit-calculator/pkg/clients/rest"
	"profit-calculator/pkg/config"
	"profit-calculator/pkg/logger"
)

const serviceName = "ghl"

// ErrMissingContactID is returned when a create call succeeds without an id.
var ErrMissingContactID = errors.New("contact creation succeeded but no id returned")

// Client defines the interface for interacting with the GoHighLevel contacts API
type Client interface {
	CreateContact(ctx context.Context, contact ContactRequest) (string, error)
	UpdateContact(ctx context.Context, contactID string, update UpdateRequest) error
}

// ContactRequest is the body of a contact create call.
type ContactRequest struct {
	Email        string            `json:"email"`
	CustomFields map[string]string `json:"customFields"`
	LocationID   string            `json:"locationId"`
	Tags         []string          `json:"tags"`
}

// UpdateRequest is the body of a contact update call.
type UpdateRequest struct {
	CustomFields map[string]string `json:"customFields"`
	LocationID   string            `json:"locationId"`
}

type contactResponse struct {
	Contact *struct {
		ID string `json:"id"`
	} `json:"contact"`
}

type clientImpl struct {
	apiKey     string
	apiVersion string
	baseURL    string
	httpClient rest.HTTPDoer
	logger     logger.Logger
}

// Option customises a Client.
type Option func(*clientImpl)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(doer rest.HTTPDoer) Option {
	return func(c *clientImpl) {
		c.httpClient = doer
	}
}

// NewClient creates a new GoHighLevel client. The transport has no
// timeout of its own; calls run until the context or the server ends them.
func NewClient(cfg config.GHLConfig, log logger.Logger, opts ...Option) Client {
	c := &clientImpl{
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{},
		logger:     log.WithFields(map[string]interface{}{"client": serviceName}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *clientImpl) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Version":       c.apiVersion,
	}
}

func (c *clientImpl) CreateContact(ctx context.Context, contact ContactRequest) (string, error) {
	body, err := rest.Do(ctx, c.httpClient, rest.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/v1/contacts/", c.baseURL),
		Headers: c.headers(),
		Payload: contact,
	})
	if err != nil {
		return "", err
	}

	var response contactResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: error parsing response: %v", rest.ErrMalformedResponse, err)
	}
	if response.Contact == nil || response.Contact.ID == "" {
		return "", ErrMissingContactID
	}

	c.logger.Info("created GHL contact", map[string]interface{}{"contactId": response.Contact.ID})
	return response.Contact.ID, nil
}

func (c *clientImpl) UpdateContact(ctx context.Context, contactID string, update UpdateRequest) error {
	if contactID == "" {
		return fmt.Errorf("contact id is required")
	}

	_, err := rest.Do(ctx, c.httpClient, rest.Request{
		Service: serviceName,
		Method:  http.MethodPut,
		URL:     fmt.Sprintf("%s/v1/contacts/%s", c.baseURL, url.PathEscape(contactID)),
		Headers: c.headers(),
		Payload: update,
	})
	if err != nil {
		return err
	}

	c.logger.Info("updated GHL contact", map[string]interface{}{
		"contactId": contactID,
		"fields":    len(update.CustomFields),
	})
	return nil
}
