package models

import (
	"time"

	"profit-calculator/pkg/savings"
)

// Lead exists only for the duration of a submission.
type Lead struct {
	Email        string
	Input        savings.Input
	AnnualImpact float64
}

// SubmissionRecord mirrors a lead into the submissions table.
type SubmissionRecord struct {
	ID               string    `json:"id,omitempty"`
	Email            string    `json:"email"`
	MonthlyLeads     float64   `json:"monthly_leads"`
	LeadValue        float64   `json:"lead_value"`
	OperationalCosts float64   `json:"operational_costs"`
	AdminHours       float64   `json:"admin_hours"`
	MarketingSpend   *float64  `json:"marketing_spend"`
	ChurnRate        *float64  `json:"churn_rate"`
	GHLContactID     string    `json:"ghl_contact_id"`
	AnnualSavings    float64   `json:"annual_savings"`
	CreatedAt        time.Time `json:"-"`
}

// NewSubmissionRecord builds the datastore row for a lead accepted by the CRM.
func NewSubmissionRecord(lead Lead, contactID string) SubmissionRecord {
	return SubmissionRecord{
		Email:            lead.Email,
		MonthlyLeads:     lead.Input.MonthlyLeads,
		LeadValue:        lead.Input.LeadValue,
		OperationalCosts: lead.Input.OperationalCosts,
		AdminHours:       lead.Input.AdminHours,
		MarketingSpend:   lead.Input.MarketingSpend,
		ChurnRate:        lead.Input.ChurnRate,
		GHLContactID:     contactID,
		AnnualSavings:    lead.AnnualImpact,
	}
}
