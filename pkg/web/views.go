package web

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"profit-calculator/pkg/savings"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders whole dollars with thousands separators: $129,600.
func FormatCurrency(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// MetricCard is one headline figure on the results screen.
type MetricCard struct {
	Title       string
	Value       float64
	Display     string
	Description string
	Negative    bool
}

// BreakdownView is one row of the impact breakdown.
type BreakdownView struct {
	Label   string
	Percent float64
	Value   float64
	Display string
}

// ResultsView is everything the results screen and the PDF report show.
type ResultsView struct {
	Input     savings.Input
	Metrics   savings.Metrics
	Cards     []MetricCard
	Breakdown []BreakdownView
	// Teaser is the figure quoted on the toolkit offer.
	Teaser        float64
	TeaserDisplay string
}

// NewResultsView derives every displayed number from savings.Compute.
func NewResultsView(in savings.Input) ResultsView {
	m := savings.Compute(in)
	teaser := savings.Teaser(in)

	view := ResultsView{
		Input:   in,
		Metrics: m,
		Cards: []MetricCard{
			{
				Title:       "Monthly Lead Recovery",
				Value:       m.MonthlyLeadRecovery,
				Display:     FormatCurrency(m.MonthlyLeadRecovery),
				Description: "We'll recover this amount in lost revenue monthly",
			},
			{
				Title:       "Monthly Cost Savings",
				Value:       m.MonthlyCostSavings,
				Display:     FormatCurrency(m.MonthlyCostSavings),
				Description: "Save by automating tasks like invoicing and follow-ups",
			},
			{
				Title:       "Annual Loss Without AI",
				Value:       m.AnnualImpact,
				Display:     FormatCurrency(m.AnnualImpact),
				Description: "Total amount you're losing without AI automation",
				Negative:    true,
			},
		},
		Teaser:        teaser,
		TeaserDisplay: FormatCurrency(teaser),
	}

	for _, row := range savings.Breakdown(m) {
		view.Breakdown = append(view.Breakdown, BreakdownView{
			Label:   row.Label,
			Percent: row.Percent,
			Value:   row.Value,
			Display: FormatCurrency(row.Value),
		})
	}
	return view
}

// Testimonial is a social proof card shown under the calculator panel.
type Testimonial struct {
	Title       string
	Savings     string
	Description string
}

var testimonials = []Testimonial{
	{Title: "Dental Practice", Savings: "$12,000", Description: "Saved monthly by automating appointments"},
	{Title: "E-Commerce Brand", Savings: "30%", Description: "Of lost leads recovered with AI"},
	{Title: "Service Agency", Savings: "$8,500", Description: "Monthly operational costs reduced"},
}

// Testimonials returns the fixed social proof cards.
func Testimonials() []Testimonial {
	return append([]Testimonial(nil), testimonials...)
}
