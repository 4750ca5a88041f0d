package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"bondscope/pkg/contracts/domain"
)

// DateLayout is the day/abbreviated-month/year format used by the disclosures.
const DateLayout = "02/Jan/2006"

// ParseDate parses a disclosure date such as "12/Apr/2019".
// Anything that does not parse yields an invalid NullDate.
func ParseDate(raw any) domain.NullDate {
	switch v := raw.(type) {
	case string:
		t, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return domain.NullDate{}
		}
		return domain.NullDate{Time: t, Valid: true}
	case time.Time:
		if v.IsZero() {
			return domain.NullDate{}
		}
		return domain.NewDate(v.Year(), v.Month(), v.Day())
	default:
		return domain.NullDate{}
	}
}

// ParseAmount parses a denomination. Text has its thousands separators and
// whitespace stripped, so "1,00,000" and "1 000" are both accepted. Numeric
// values pass through when they are non-negative whole numbers that fit int64.
func ParseAmount(raw any) domain.NullAmount {
	switch v := raw.(type) {
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r == ',' || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, v)
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil || n < 0 {
			return domain.NullAmount{}
		}
		return domain.NewAmount(n)
	case int:
		return nonNegative(int64(v))
	case int32:
		return nonNegative(int64(v))
	case int64:
		return nonNegative(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return domain.NullAmount{}
		}
		return domain.NewAmount(int64(v))
	case uint32:
		return domain.NewAmount(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return domain.NullAmount{}
		}
		return domain.NewAmount(int64(v))
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	default:
		return domain.NullAmount{}
	}
}

func nonNegative(n int64) domain.NullAmount {
	if n < 0 {
		return domain.NullAmount{}
	}
	return domain.NewAmount(n)
}

func wholeFloat(f float64) domain.NullAmount {
	// 2^63 is the first float64 that no longer fits
	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 || f != math.Trunc(f) {
		return domain.NullAmount{}
	}
	return domain.NewAmount(int64(f))
}

// NormalizeName collapses runs of whitespace into one space and trims the ends.
// It reports false for non-string input and for names that end up empty.
func NormalizeName(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	name := strings.Join(strings.Fields(s), " ")
	if name == "" {
		return "", false
	}
	return name, true
}
