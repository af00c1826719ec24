package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profit-calculator/pkg/clients/ghl"
	"profit-calculator/pkg/config"
	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/middleware"
	"profit-calculator/pkg/services"
	"profit-calculator/pkg/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type crmServer struct {
	mu     sync.Mutex
	calls  int
	status int
	body   string
	method string
	path   string

	// When set, each request signals arrived and waits for release.
	arrived chan struct{}
	release chan struct{}
}

func (c *crmServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.release != nil {
		c.arrived <- struct{}{}
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.method = r.Method
	c.path = r.URL.Path
	w.WriteHeader(c.status)
	_, _ = w.Write([]byte(c.body))
}

func (c *crmServer) respond(status int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.body = body
}

func (c *crmServer) lastRequest() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method, c.path
}

func (c *crmServer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type testApp struct {
	router *gin.Engine
	crm    *crmServer
}

func newTestApp(t *testing.T, configured bool) *testApp {
	t.Helper()
	return newTestAppWithCRM(t, configured, &crmServer{status: http.StatusOK, body: `{"contact":{"id":"contact-1"}}`})
}

func newTestAppWithCRM(t *testing.T, configured bool, crm *crmServer) *testApp {
	t.Helper()

	srv := httptest.NewServer(crm)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", SessionTTL: time.Hour},
		GHL: config.GHLConfig{
			BaseURL:    srv.URL,
			APIVersion: "2021-07-28",
			Tag:        "profit-calculator-submission",
			Fields: config.FieldNames{
				MonthlyLeads:     "monthly_leads",
				LeadValue:        "lead_value",
				OperationalCosts: "operational_costs",
				AdminHours:       "admin_hours",
				MarketingSpend:   "marketing_spend",
				ChurnRate:        "churn_rate",
				AnnualSavings:    "annual_savings",
			},
		},
		ToolkitURL: "https://example.com/toolkit",
		BookingURL: "https://example.com/book",
	}
	if configured {
		cfg.GHL.APIKey = "key"
		cfg.GHL.LocationID = "loc-1"
	}

	log := logger.NewTestLogger(t)
	leads := services.NewLeadService(ghl.NewClient(cfg.GHL, log), nil, cfg.GHL, log)
	wizard := services.NewWizard(services.NewMemorySessionStore(time.Hour), leads, log)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	return &testApp{
		router: NewRouter(NewHandlers(wizard, leads, cfg, log), renderer, log),
		crm:    crm,
	}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postForm(path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookie)
}

func (a *testApp) postJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, nil)
}

// calculated starts a session and posts the example answers.
func (a *testApp) calculated(t *testing.T) *http.Cookie {
	t.Helper()
	w := a.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	w = a.postForm("/calculate", exampleForm(), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	return cookie
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func exampleForm() url.Values {
	return url.Values{
		"monthlyLeads":     {"50"},
		"leadValue":        {"$1,000"},
		"operationalCosts": {"4000"},
		"adminHours":       {"4"},
		"advanced":         {"false"},
	}
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, true)

	w := app.do(httptest.NewRequest(http.MethodGet, "/health", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestShowCalculator(t *testing.T) {
	app := newTestApp(t, true)

	w := app.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="monthlyLeads"`)
	assert.NotEmpty(t, sessionCookie(t, w).Value)
}

func TestCalculate_RendersResults(t *testing.T) {
	app := newTestApp(t, true)
	cookie := sessionCookie(t, app.do(httptest.NewRequest(http.MethodGet, "/", nil), nil))

	w := app.postForm("/calculate", exampleForm(), cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "$129,600")
	assert.Contains(t, body, "Start recovering $120,000 in annual revenue today!")
	assert.Contains(t, body, "Lead Generation")
	assert.Contains(t, body, `action="/leads"`)
}

func TestCalculate_WithoutSessionStartsOne(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postForm("/calculate", exampleForm(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$129,600")
	assert.NotEmpty(t, sessionCookie(t, w).Value)
}

func TestCalculate_InputIsFrozen(t *testing.T) {
	app := newTestApp(t, true)
	cookie := app.calculated(t)

	w := app.postForm("/calculate", url.Values{"monthlyLeads": {"1"}}, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$129,600")
}

func TestCalculate_BadInputBecomesZero(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postForm("/calculate", url.Values{"monthlyLeads": {"abc"}, "leadValue": {"-5"}}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$0")
}

func TestSubmitLead_Success(t *testing.T) {
	app := newTestApp(t, true)
	cookie := app.calculated(t)

	w := app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Redirecting you to your Business Resilience Toolkit...")
	assert.Contains(t, body, "https://example.com/toolkit")
	assert.Equal(t, 1, app.crm.callCount())

	w = app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, app.crm.callCount(), "a submitted session never calls the CRM again")
}

func TestSubmitLead_RejectedThenRetried(t *testing.T) {
	app := newTestApp(t, true)
	cookie := app.calculated(t)
	app.crm.respond(http.StatusUnprocessableEntity, `{"message":"bad email"}`)

	w := app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, cookie)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "bad email")
	assert.Contains(t, w.Body.String(), `value="owner@example.com"`)

	app.crm.respond(http.StatusOK, `{"contact":{"id":"contact-2"}}`)
	w = app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Redirecting you to your Business Resilience Toolkit...")
	assert.Equal(t, 2, app.crm.callCount())
}

func TestSubmitLead_InvalidEmail(t *testing.T) {
	app := newTestApp(t, true)
	cookie := app.calculated(t)

	w := app.postForm("/leads", url.Values{"email": {"not-an-email"}}, cookie)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a valid email address.")
	assert.Equal(t, 0, app.crm.callCount())
}

func TestSubmitLead_NotConfigured(t *testing.T) {
	app := newTestApp(t, false)
	cookie := app.calculated(t)

	w := app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, cookie)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "GHL configuration is missing")
	assert.Equal(t, 0, app.crm.callCount())
}

func TestSubmitLead_WithoutResultsRedirects(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := sessionCookie(t, app.do(httptest.NewRequest(http.MethodGet, "/", nil), nil))
	w = app.postForm("/leads", url.Values{"email": {"owner@example.com"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 0, app.crm.callCount())
}

func TestDownloadReport(t *testing.T) {
	app := newTestApp(t, true)
	cookie := app.calculated(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/report.pdf", nil), cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = app.do(httptest.NewRequest(http.MethodGet, "/report.pdf", nil), nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestEstimate(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postJSON(http.MethodPost, "/api/estimate",
		`{"monthlyLeads":50,"leadValue":1000,"operationalCosts":4000,"adminHours":-4}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Metrics struct {
			AnnualImpact float64 `json:"annualImpact"`
		} `json:"metrics"`
		Breakdown []map[string]interface{} `json:"breakdown"`
		Teaser    float64                  `json:"teaser"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Negative admin hours are clamped to zero: (10000 + 600) * 12.
	assert.Equal(t, 127200.0, resp.Metrics.AnnualImpact)
	assert.Equal(t, 120000.0, resp.Teaser)
	assert.Len(t, resp.Breakdown, 4)
}

func TestEstimate_TextFiguresAreCoerced(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postJSON(http.MethodPost, "/api/estimate",
		`{"monthlyLeads":"50","leadValue":"$1,000","operationalCosts":"abc","adminHours":"4"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Input struct {
			MonthlyLeads     float64 `json:"monthlyLeads"`
			OperationalCosts float64 `json:"operationalCosts"`
		} `json:"input"`
		Metrics struct {
			AnnualImpact float64 `json:"annualImpact"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 50.0, resp.Input.MonthlyLeads)
	assert.Equal(t, 0.0, resp.Input.OperationalCosts)
	// (10000 + 0 + 4*50) * 12
	assert.Equal(t, 122400.0, resp.Metrics.AnnualImpact)
}

func TestEstimate_InvalidJSON(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postJSON(http.MethodPost, "/api/estimate", `{"monthlyLeads":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON format")
}

func TestCreateLead(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postJSON(http.MethodPost, "/api/leads",
		`{"email":"owner@example.com","monthlyLeads":50,"leadValue":1000,"operationalCosts":4000,"adminHours":4}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success","contactId":"contact-1"}`, w.Body.String())
	method, path := app.crm.lastRequest()
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/v1/contacts/", path)
}

func TestCreateLead_TextFiguresAreCoerced(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postJSON(http.MethodPost, "/api/leads",
		`{"email":"owner@example.com","monthlyLeads":"50","leadValue":"abc","operationalCosts":"$4,000","adminHours":""}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, app.crm.callCount())
}

func TestCreateLead_CompletesAfterClientDisconnects(t *testing.T) {
	crm := &crmServer{
		status:  http.StatusOK,
		body:    `{"contact":{"id":"contact-3"}}`,
		arrived: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	app := newTestAppWithCRM(t, true, crm)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"email":"owner@example.com"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- app.do(req, nil) }()

	<-crm.arrived
	cancel()
	close(crm.release)
	w := <-done

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "contact-3")
}

func TestCreateLead_Errors(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		app := newTestApp(t, true)
		w := app.postJSON(http.MethodPost, "/api/leads", `{"monthlyLeads":50}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "A valid email address is required")
		assert.Equal(t, 0, app.crm.callCount())
	})

	t.Run("broken json", func(t *testing.T) {
		app := newTestApp(t, true)
		w := app.postJSON(http.MethodPost, "/api/leads", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid JSON format")
		assert.Equal(t, 0, app.crm.callCount())
	})

	t.Run("not configured", func(t *testing.T) {
		app := newTestApp(t, false)
		w := app.postJSON(http.MethodPost, "/api/leads", `{"email":"owner@example.com"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), string(services.KindConfigurationMissing))
		assert.Equal(t, 0, app.crm.callCount())
	})

	t.Run("missing contact id", func(t *testing.T) {
		app := newTestApp(t, true)
		app.crm.respond(http.StatusOK, `{"contact":{}}`)
		w := app.postJSON(http.MethodPost, "/api/leads", `{"email":"owner@example.com"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "contact creation succeeded but no id returned")
	})
}

func TestUpdateLead(t *testing.T) {
	app := newTestApp(t, true)

	w := app.postJSON(http.MethodPut, "/api/leads/contact-1", `{"monthlyLeads":10}`)

	require.Equal(t, http.StatusOK, w.Code)
	method, path := app.crm.lastRequest()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/v1/contacts/contact-1", path)

	w = app.postJSON(http.MethodPut, "/api/leads/contact-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"in flight", services.ErrSubmissionInFlight, http.StatusConflict},
		{"invalid lead", &services.SubmissionError{Kind: services.KindInvalidLead}, http.StatusBadRequest},
		{"config missing", &services.SubmissionError{Kind: services.KindConfigurationMissing}, http.StatusServiceUnavailable},
		{"network", &services.SubmissionError{Kind: services.KindNetworkUnreachable}, http.StatusBadGateway},
		{"rejected", &services.SubmissionError{Kind: services.KindRemoteRejected}, http.StatusBadGateway},
		{"malformed", &services.SubmissionError{Kind: services.KindMalformedResponse}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
