package exporter

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	lakh  = 100000
	crore = 10000000
)

var countPrinter = message.NewPrinter(language.English)

// FormatINR renders rupees with Indian digit grouping: the last three
// digits, then pairs. 12345678 becomes "₹1,23,45,678".
func FormatINR(amount int64) string {
	sign := ""
	// math.MinInt64 has no positive counterpart; format via uint64
	u := uint64(amount)
	if amount < 0 {
		sign = "-"
		u = uint64(-(amount + 1)) + 1
	}
	digits := strconv.FormatUint(u, 10)
	if len(digits) <= 3 {
		return sign + "₹" + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return sign + "₹" + strings.Join(groups, ",") + "," + tail
}

// AmountInWords gives a short spoken form in the Indian system, rounded to
// two decimals: 250000 is "2.5 lakh", 12500000 is "1.25 crore".
// Amounts under a thousand are returned as plain digits.
func AmountInWords(amount int64) string {
	d := decimal.NewFromInt(amount)
	abs := d.Abs()

	var (
		unit int64
		name string
	)
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(crore)):
		unit, name = crore, "crore"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(lakh)):
		unit, name = lakh, "lakh"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		unit, name = 1000, "thousand"
	default:
		return d.String()
	}
	return d.Div(decimal.NewFromInt(unit)).Round(2).String() + " " + name
}

var (
	ones = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
)

// SpellINR spells an amount out in Indian English, grouping by crore, lakh
// and thousand: 12345678 is "one crore, twenty-three lakh, forty-five
// thousand, six hundred and seventy-eight". Crores above ninety-nine are
// spelled recursively, so 1e9 is "one hundred crore".
func SpellINR(amount int64) string {
	if amount < 0 {
		return "minus " + spell(uint64(-(amount+1))+1)
	}
	return spell(uint64(amount))
}

func spell(n uint64) string {
	if n == 0 {
		return ones[0]
	}

	var groups []string
	if c := n / crore; c > 0 {
		groups = append(groups, spell(c)+" crore")
	}
	rest := n % crore
	if l := rest / lakh; l > 0 {
		groups = append(groups, underHundred(l)+" lakh")
	}
	if t := rest % lakh / 1000; t > 0 {
		groups = append(groups, underHundred(t)+" thousand")
	}
	if h := rest % 1000 / 100; h > 0 {
		groups = append(groups, ones[h]+" hundred")
	}

	out := strings.Join(groups, ", ")
	if tail := rest % 100; tail > 0 {
		if out == "" {
			return underHundred(tail)
		}
		out += " and " + underHundred(tail)
	}
	return out
}

func underHundred(n uint64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + "-" + ones[n%10]
}

// FormatCount renders a record count with western thousands separators.
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
