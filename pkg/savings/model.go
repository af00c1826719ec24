package savings

// Formula coefficients. These are fixed business constants, not configuration.
const (
	LeadRecoveryRate = 0.20
	CostSavingsRate  = 0.15
	AdminHourlyRate  = 50.0
	MonthsPerYear    = 12.0
)

const totalBreakdownPct = 100.0

// Input is the frozen set of calculator answers.
// MarketingSpend and ChurnRate are nil unless the advanced section was used.
type Input struct {
	MonthlyLeads     float64  `json:"monthlyLeads"`
	LeadValue        float64  `json:"leadValue"`
	OperationalCosts float64  `json:"operationalCosts"`
	AdminHours       float64  `json:"adminHours"`
	MarketingSpend   *float64 `json:"marketingSpend,omitempty"`
	ChurnRate        *float64 `json:"churnRate,omitempty"`
}

// Metrics holds the derived figures. They are never stored on their own,
// always recomputed from an Input.
type Metrics struct {
	MonthlyLeadRecovery float64 `json:"monthlyLeadRecovery"`
	MonthlyCostSavings  float64 `json:"monthlyCostSavings"`
	AnnualImpact        float64 `json:"annualImpact"`
}

// BreakdownRow is one illustrative slice of the annual impact.
type BreakdownRow struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Value   float64 `json:"value"`
}

// allocations must sum to totalBreakdownPct.
var allocations = []struct {
	label   string
	percent float64
}{
	{"Lead Generation", 40},
	{"Sales Automation", 30},
	{"Branding & Marketing", 20},
	{"Customer Retention", 10},
}

// Compute is the single source of truth for every figure shown to a user or
// sent to the CRM and datastore.
func Compute(in Input) Metrics {
	leadRecovery := in.MonthlyLeads * in.LeadValue * LeadRecoveryRate
	costSavings := in.OperationalCosts*CostSavingsRate + in.AdminHours*AdminHourlyRate

	return Metrics{
		MonthlyLeadRecovery: leadRecovery,
		MonthlyCostSavings:  costSavings,
		AnnualImpact:        (leadRecovery + costSavings) * MonthsPerYear,
	}
}

// Breakdown splits the annual impact across the fixed display categories.
func Breakdown(m Metrics) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, BreakdownRow{
			Label:   a.label,
			Percent: a.percent,
			Value:   m.AnnualImpact * a.percent / totalBreakdownPct,
		})
	}
	return rows
}

// Teaser is the headline figure on the toolkit offer: annualized lead
// recovery only, without the cost-savings term.
func Teaser(in Input) float64 {
	return Compute(in).MonthlyLeadRecovery * MonthsPerYear
}
