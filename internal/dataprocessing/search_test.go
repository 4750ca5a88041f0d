package dataprocessing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name      string
		donor     string
		wantQuery string
	}{
		{
			name:      "plain name",
			donor:     "ACME LTD",
			wantQuery: "ACME LTD (ED|IT|raid|scam|stocks|Enforcement Directorate|Income Tax)",
		},
		{
			name:      "surrounding space trimmed",
			donor:     "  ACME LTD ",
			wantQuery: "ACME LTD (ED|IT|raid|scam|stocks|Enforcement Directorate|Income Tax)",
		},
		{
			name:      "reserved characters escaped",
			donor:     "A&B CO",
			wantQuery: "A&B CO (ED|IT|raid|scam|stocks|Enforcement Directorate|Income Tax)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := SearchURL(tt.donor)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "www.google.com", u.Host)
			assert.Equal(t, "/search", u.Path)
			assert.Equal(t, tt.wantQuery, u.Query().Get("q"))
			assert.Len(t, u.Query(), 1)
		})
	}
}
