package report

import (
	"strconv"
	"strings"

	"igreport/pkg/stats"
)

// FormatNumber renders n with comma thousands separators
func FormatNumber(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a rate with at least one decimal, e.g. 17.0% or 3.33%
func FormatPercent(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// FormatEngagement renders the engagement rate, or n/a when it is undefined
func FormatEngagement(p *stats.ProfileStats) string {
	if p.EngagementUndefined {
		return "n/a"
	}
	return FormatPercent(p.EngagementRatePct)
}
