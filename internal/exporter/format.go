package exporter

import (
	"strconv"

	"bondscope/pkg/contracts/domain"
)

// formatFloat formats a percentage or statistic with two decimals.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatDate(d domain.NullDate) string {
	return d.String()
}

func formatAmount(a domain.NullAmount) string {
	if !a.Valid {
		return ""
	}
	return formatInt(a.Int64)
}
