package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestNames(t *testing.T) {
	names := []string{"ACME STEEL", "ACME STEEL WORKS", "BHARAT TRADERS", "CITY MART", "DELTA POWER"}

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"typo", "ACME STEL", 5, []string{"ACME STEEL"}},
		{"substring ranks first", "steel", 5, []string{"ACME STEEL", "ACME STEEL WORKS"}},
		{"limit applies", "steel", 1, []string{"ACME STEEL"}},
		{"nothing close", "ZZZZZZZZ", 5, []string{}},
		{"blank query", "  ", 5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestNames(tt.query, names, tt.limit))
		})
	}
}
