package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		want  time.Time
		valid bool
	}{
		{
			name:  "canonical format",
			raw:   "12/Apr/2019",
			want:  time.Date(2019, 4, 12, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "surrounding whitespace",
			raw:   "  01/Jan/2024 \n",
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "time value passes through truncated",
			raw:   time.Date(2020, 3, 5, 14, 30, 0, 0, time.UTC),
			want:  time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC),
			valid: true,
		},
		{name: "iso format rejected", raw: "2019-04-12"},
		{name: "numeric month rejected", raw: "12/04/2019"},
		{name: "impossible day", raw: "31/Feb/2019"},
		{name: "empty string", raw: ""},
		{name: "nil", raw: nil},
		{name: "number", raw: 43567},
		{name: "zero time", raw: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.True(t, tt.want.Equal(got.Time), "want %v got %v", tt.want, got.Time)
			}
		})
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	inputs := []string{"01/Jan/2018", "12/Apr/2019", "29/Feb/2020", "31/Dec/2023", "15/Jun/2022"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := ParseDate(in)
			assert.True(t, got.Valid)
			assert.Equal(t, in, got.Time.Format(DateLayout))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		want  int64
		valid bool
	}{
		{name: "indian grouping", raw: "1,00,000", want: 100000, valid: true},
		{name: "plain digits", raw: "100000", want: 100000, valid: true},
		{name: "western grouping", raw: "10,000,000", want: 10000000, valid: true},
		{name: "inner spaces", raw: " 1 000 ", want: 1000, valid: true},
		{name: "tabs and newlines", raw: "1,000\t\n", want: 1000, valid: true},
		{name: "zero", raw: "0", want: 0, valid: true},
		{name: "letters", raw: "abc"},
		{name: "decimal text", raw: "1000.50"},
		{name: "negative text", raw: "-1000"},
		{name: "overflow", raw: "99999999999999999999"},
		{name: "empty", raw: ""},
		{name: "int passes through", raw: 1000, want: 1000, valid: true},
		{name: "int64 passes through", raw: int64(10000000), want: 10000000, valid: true},
		{name: "negative int", raw: -5},
		{name: "whole float", raw: 1000000.0, want: 1000000, valid: true},
		{name: "fractional float", raw: 10.5},
		{name: "NaN", raw: math.NaN()},
		{name: "float beyond int64", raw: 1e19},
		{name: "uint64 beyond int64", raw: uint64(math.MaxUint64)},
		{name: "nil", raw: nil},
		{name: "bool", raw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Int64)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		want  string
		valid bool
	}{
		{name: "already clean", raw: "ACME LIMITED", want: "ACME LIMITED", valid: true},
		{name: "inner runs collapse", raw: "ACME   STEEL\tLIMITED", want: "ACME STEEL LIMITED", valid: true},
		{name: "ends trimmed", raw: "  Party  ", want: "Party", valid: true},
		{name: "newlines collapse", raw: "ALL INDIA\nTRINAMOOL\r\nCONGRESS", want: "ALL INDIA TRINAMOOL CONGRESS", valid: true},
		{name: "only whitespace", raw: " \t "},
		{name: "number", raw: 42},
		{name: "nil", raw: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeName(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
