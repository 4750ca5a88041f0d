package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bondscope/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero", 0, "0.00"},
		{"whole percentage", 100, "100.00"},
		{"one decimal", 13.4, "13.40"},
		{"rounds to two decimals", 33.33333, "33.33"},
		{"negative", -2.5, "-2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatNullable(t *testing.T) {
	assert.Equal(t, "", formatAmount(domain.NullAmount{}))
	assert.Equal(t, "100000", formatAmount(domain.NewAmount(100000)))
	assert.Equal(t, "", formatDate(domain.NullDate{}))
	assert.Equal(t, "2019-04-12", formatDate(domain.NewDate(2019, 4, 12)))
}
