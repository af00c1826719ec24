package web

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"profit-calculator/pkg/savings"
)

// RenderReportPDF lays the results view out on one A4 page.
func RenderReportPDF(in savings.Input, generated time.Time) ([]byte, error) {
	view := NewResultsView(in)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Business Impact Analysis", false)
	pdf.AddPage()

	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - left - right

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(49, 46, 129)
	pdf.CellFormat(contentWidth, 12, "Your Business Impact Analysis", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", generated.Format("2 January 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(49, 46, 129)
	pdf.SetFillColor(245, 247, 250)
	pdf.CellFormat(contentWidth, 8, "Your answers", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(50, 50, 50)
	answers := [][2]string{
		{"Missed leads per month", fmt.Sprintf("%g", in.MonthlyLeads)},
		{"Average lead value", FormatCurrency(in.LeadValue)},
		{"Monthly admin operational costs", FormatCurrency(in.OperationalCosts)},
		{"Admin hours per week", fmt.Sprintf("%g", in.AdminHours)},
	}
	if in.MarketingSpend != nil {
		answers = append(answers, [2]string{"Marketing spend", FormatCurrency(*in.MarketingSpend)})
	}
	if in.ChurnRate != nil {
		answers = append(answers, [2]string{"Customer churn rate", fmt.Sprintf("%g%%", *in.ChurnRate)})
	}
	for _, a := range answers {
		pdf.CellFormat(contentWidth*0.65, 7, a[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth*0.35, 7, a[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(49, 46, 129)
	pdf.CellFormat(contentWidth, 8, "Headline figures", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, card := range view.Cards {
		if card.Negative {
			pdf.SetTextColor(185, 28, 28)
		} else {
			pdf.SetTextColor(21, 128, 61)
		}
		pdf.CellFormat(contentWidth*0.65, 8, card.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth*0.35, 8, card.Display, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(49, 46, 129)
	pdf.CellFormat(contentWidth, 8, "Breakdown", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(50, 50, 50)
	for _, row := range view.Breakdown {
		pdf.CellFormat(contentWidth*0.5, 7, row.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth*0.15, 7, fmt.Sprintf("%.0f%%", row.Percent), "1", 0, "C", false, 0, "")
		pdf.CellFormat(contentWidth*0.35, 7, row.Display, "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering report: %w", err)
	}
	return buf.Bytes(), nil
}
