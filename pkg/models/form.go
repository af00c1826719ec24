package models

import "profit-calculator/pkg/savings"

// CalculatorForm is the raw text posted by the calculator screen.
// Fields stay strings so bad input can be coerced instead of rejected.
type CalculatorForm struct {
	MonthlyLeads     string `form:"monthlyLeads"`
	LeadValue        string `form:"leadValue"`
	OperationalCosts string `form:"operationalCosts"`
	AdminHours       string `form:"adminHours"`
	MarketingSpend   string `form:"marketingSpend"`
	ChurnRate        string `form:"churnRate"`
	Advanced         string `form:"advanced"`
}

// AdvancedOpen reports whether the visitor expanded the advanced section.
func (f CalculatorForm) AdvancedOpen() bool {
	switch f.Advanced {
	case "true", "1", "on":
		return true
	}
	return false
}

// Input freezes the form into a calculator input, coercing every field.
func (f CalculatorForm) Input() savings.Input {
	return savings.Input{
		MonthlyLeads:     savings.ParseAmount(f.MonthlyLeads),
		LeadValue:        savings.ParseAmount(f.LeadValue),
		OperationalCosts: savings.ParseAmount(f.OperationalCosts),
		AdminHours:       savings.ParseAmount(f.AdminHours),
		MarketingSpend:   savings.ParseOptional(f.MarketingSpend, f.AdvancedOpen()),
		ChurnRate:        savings.ParseOptional(f.ChurnRate, f.AdvancedOpen()),
	}
}

// LeadForm is the email capture form shown under the results.
type LeadForm struct {
	Email string `form:"email" binding:"required,email"`
}

// LeadRequest is the JSON body accepted by the lead API. Figures may be
// numbers or text; see savings.Amount.
type LeadRequest struct {
	Email string `json:"email" binding:"required,email"`
	savings.Fields
}

// LeadUpdateRequest carries the custom fields to change on an existing contact.
// Nil fields are left untouched.
type LeadUpdateRequest struct {
	MonthlyLeads     *float64 `json:"monthlyLeads"`
	LeadValue        *float64 `json:"leadValue"`
	OperationalCosts *float64 `json:"operationalCosts"`
	AdminHours       *float64 `json:"adminHours"`
	MarketingSpend   *float64 `json:"marketingSpend"`
	ChurnRate        *float64 `json:"churnRate"`
	AnnualSavings    *float64 `json:"annualSavings"`
}
