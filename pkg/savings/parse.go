package savings

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount turns raw field text into a non-negative number.
//
// Bad input is never an error here: empty, non-numeric, non-finite and
// negative values all become 0 so a visitor is never blocked by a typo.
// Currency and percent decorations ("$1,000", "5%") are accepted.
func ParseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return 0
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Clamp applies the same policy to an already-numeric value, used for
// JSON requests where the number was decoded by the client.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseOptional coerces an advanced field. It returns nil when the field was
// not offered to the visitor or left blank.
func ParseOptional(raw string, offered bool) *float64 {
	if !offered && strings.TrimSpace(raw) == "" {
		return nil
	}
	v := ParseAmount(raw)
	return &v
}

// Normalize clamps every field of an Input decoded from an untrusted source.
func Normalize(in Input) Input {
	out := Input{
		MonthlyLeads:     Clamp(in.MonthlyLeads),
		LeadValue:        Clamp(in.LeadValue),
		OperationalCosts: Clamp(in.OperationalCosts),
		AdminHours:       Clamp(in.AdminHours),
	}
	if in.MarketingSpend != nil {
		v := Clamp(*in.MarketingSpend)
		out.MarketingSpend = &v
	}
	if in.ChurnRate != nil {
		v := Clamp(*in.ChurnRate)
		out.ChurnRate = &v
	}
	return out
}
