package savings

import (
	"bytes"
	"encoding/json"
)

// Amount is a calculator figure decoded from JSON. It accepts a number or
// text and applies the same coercion as the HTML form, so decoding never fails.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = Amount(ParseAmount(text))
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		// null, booleans, objects and out-of-range numbers
		*a = 0
		return nil
	}
	*a = Amount(Clamp(n))
	return nil
}

func (a *Amount) optional() *float64 {
	if a == nil {
		return nil
	}
	v := float64(*a)
	return &v
}

// Fields is the JSON shape of a calculator input.
type Fields struct {
	MonthlyLeads     Amount  `json:"monthlyLeads"`
	LeadValue        Amount  `json:"leadValue"`
	OperationalCosts Amount  `json:"operationalCosts"`
	AdminHours       Amount  `json:"adminHours"`
	MarketingSpend   *Amount `json:"marketingSpend,omitempty"`
	ChurnRate        *Amount `json:"churnRate,omitempty"`
}

// Input converts the decoded fields. Absent advanced fields stay nil.
func (f Fields) Input() Input {
	return Input{
		MonthlyLeads:     float64(f.MonthlyLeads),
		LeadValue:        float64(f.LeadValue),
		OperationalCosts: float64(f.OperationalCosts),
		AdminHours:       float64(f.AdminHours),
		MarketingSpend:   f.MarketingSpend.optional(),
		ChurnRate:        f.ChurnRate.optional(),
	}
}
