package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"profit-calculator/pkg/config"
	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/middleware"
	"profit-calculator/pkg/models"
	"profit-calculator/pkg/savings"
	"profit-calculator/pkg/services"
	"profit-calculator/pkg/utils"
	"profit-calculator/pkg/web"
)

const pageTitle = "AI Profit Calculator"

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	wizard *services.Wizard
	leads  services.LeadService
	config *config.Config
	logger logger.Logger

	// inFlight guards the stateless JSON lead endpoint, keyed by email hash.
	inFlight sync.Map
}

// NewHandlers creates a new Handlers instance
func NewHandlers(wizard *services.Wizard, leads services.LeadService, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		wizard: wizard,
		leads:  leads,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ShowCalculator always starts a fresh wizard, so a reload goes back to the form.
func (h *Handlers) ShowCalculator(c *gin.Context) {
	session, err := h.wizard.Start(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to start session", nil)
		c.String(http.StatusInternalServerError, "Something went wrong. Please reload the page.")
		return
	}

	middleware.SetSessionID(c, session.ID, h.config.Server.SessionTTL)
	c.HTML(http.StatusOK, web.PageCalculator, web.PageData{Title: pageTitle})
}

// Calculate freezes the posted form and shows the results screen.
func (h *Handlers) Calculate(c *gin.Context) {
	var form models.CalculatorForm
	// Every field is a string, so binding cannot fail on bad numbers.
	_ = c.ShouldBindWith(&form, binding.Form)

	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)
	if _, err := h.wizard.Session(ctx, sessionID); err != nil {
		session, err := h.wizard.Start(ctx)
		if err != nil {
			h.logger.WithError(err).Error("failed to start session", nil)
			c.String(http.StatusInternalServerError, "Something went wrong. Please reload the page.")
			return
		}
		sessionID = session.ID
		middleware.SetSessionID(c, sessionID, h.config.Server.SessionTTL)
	}

	session, err := h.wizard.Calculate(ctx, sessionID, form.Input())
	if err != nil && !errors.Is(err, services.ErrAlreadyCalculated) {
		h.logger.WithError(err).Error("failed to store calculation", map[string]interface{}{"session": sessionID})
		c.String(http.StatusInternalServerError, "Something went wrong. Please reload the page.")
		return
	}

	h.renderResults(c, http.StatusOK, session, "", "")
}

// SubmitLead handles the email form under the results.
func (h *Handlers) SubmitLead(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.wizard.Session(ctx, middleware.SessionID(c))
	if err != nil || session.Input == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	var form models.LeadForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.renderResults(c, http.StatusBadRequest, session, form.Email, "Please enter a valid email address.")
		return
	}

	updated, err := h.wizard.SubmitLead(ctx, session.ID, form.Email)
	if updated == nil {
		updated = session
	}

	switch {
	case err == nil, errors.Is(err, services.ErrAlreadySubmitted):
		h.renderResults(c, http.StatusOK, updated, form.Email, "")
	case errors.Is(err, services.ErrSubmissionInFlight):
		h.renderResults(c, http.StatusConflict, updated, form.Email, "")
	default:
		h.renderResults(c, statusForError(err), updated, form.Email, services.UserMessage(err))
	}
}

func (h *Handlers) renderResults(c *gin.Context, status int, session *services.Session, email, errMsg string) {
	view := web.NewResultsView(*session.Input)
	c.HTML(status, web.PageResults, web.PageData{
		Title:   pageTitle,
		Results: &view,
		Offer: web.LeadOffer{
			Email:      email,
			Error:      errMsg,
			Submitted:  session.SubmitState == services.SubmitSubmitted,
			Submitting: session.SubmitState == services.SubmitSubmitting,
			ToolkitURL: h.config.ToolkitURL,
			BookingURL: h.config.BookingURL,
		},
	})
}

// DownloadReport serves the session's results as a PDF.
func (h *Handlers) DownloadReport(c *gin.Context) {
	session, err := h.wizard.Session(c.Request.Context(), middleware.SessionID(c))
	if err != nil || session.Input == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	data, err := web.RenderReportPDF(*session.Input, time.Now())
	if err != nil {
		h.logger.WithError(err).Error("failed to render report", nil)
		c.String(http.StatusInternalServerError, "Could not generate the report.")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="business-impact-analysis.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Estimate is the JSON form of the results screen.
func (h *Handlers) Estimate(c *gin.Context) {
	var fields savings.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	input := fields.Input()
	m := savings.Compute(input)
	c.JSON(http.StatusOK, gin.H{
		"input":     input,
		"metrics":   m,
		"breakdown": savings.Breakdown(m),
		"teaser":    savings.Teaser(input),
	})
}

// CreateLead accepts a lead as JSON and forwards it synchronously.
func (h *Handlers) CreateLead(c *gin.Context) {
	var req models.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email address is required"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	key := utils.HashEmail(req.Email)
	if _, busy := h.inFlight.LoadOrStore(key, struct{}{}); busy {
		c.JSON(http.StatusConflict, gin.H{"error": services.ErrSubmissionInFlight.Error()})
		return
	}
	defer h.inFlight.Delete(key)

	// Submissions run to completion even if the client disconnects.
	ctx := context.WithoutCancel(c.Request.Context())
	contactID, err := h.leads.Submit(ctx, req.Email, req.Input())
	if err != nil {
		c.JSON(statusForError(err), gin.H{
			"error": services.UserMessage(err),
			"kind":  services.KindOf(err),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":    "success",
		"contactId": contactID,
	})
}

// UpdateLead changes custom fields on an existing CRM contact.
func (h *Handlers) UpdateLead(c *gin.Context) {
	var req models.LeadUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	if err := h.leads.UpdateLead(context.WithoutCancel(c.Request.Context()), c.Param("contactId"), req); err != nil {
		c.JSON(statusForError(err), gin.H{
			"error": services.UserMessage(err),
			"kind":  services.KindOf(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSubmissionInFlight), errors.Is(err, services.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrNotCalculated):
		return http.StatusConflict
	}

	switch services.KindOf(err) {
	case services.KindInvalidLead:
		return http.StatusBadRequest
	case services.KindConfigurationMissing:
		return http.StatusServiceUnavailable
	case services.KindNetworkUnreachable, services.KindRemoteRejected, services.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
