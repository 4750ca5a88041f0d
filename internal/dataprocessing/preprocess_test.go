package dataprocessing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessor_Purchases(t *testing.T) {
	p := NewPreprocessor(slog.Default(), PreprocessorConfig{})
	table := RawTable{
		Headers: []string{"Sr No.", "Date of Purchase", "Purchaser Name", "Denomination"},
		Rows: [][]any{
			{"1", "12/Apr/2019", "ACME   STEEL ", "1,00,00,000"},
			{nil, "", " ", ""},
			{"2", "bad date", "CITY MART", "abc"},
			{"3", "30/Jun/2021", 42, "1000"},
			{},
		},
	}

	records, report, err := p.Purchases(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, PreprocessReport{RowsIn: 5, EmptyRows: 2, InvalidDates: 1, InvalidAmounts: 1, InvalidNames: 1}, report)

	first := records[0]
	assert.Equal(t, "ACME STEEL", first.DonorName)
	assert.Equal(t, int64(10000000), first.Amount.Int64)
	assert.Equal(t, 2019, first.Year)
	assert.Equal(t, 4, first.Month)
	require.True(t, first.ValidityDate.Valid)
	assert.Equal(t, time.Date(2019, 4, 27, 0, 0, 0, 0, time.UTC), first.ValidityDate.Time)

	// one bad field does not blank the others
	second := records[1]
	assert.False(t, second.HasDate())
	assert.False(t, second.Amount.Valid)
	assert.Equal(t, "CITY MART", second.DonorName)
	assert.Zero(t, second.Year)
	assert.Zero(t, second.Month)
	assert.False(t, second.ValidityDate.Valid)

	third := records[2]
	assert.Empty(t, third.DonorName)
	assert.Equal(t, int64(1000), third.Amount.Int64)
	assert.Equal(t, 2021, third.Year)
}

func TestPreprocessor_Redemptions(t *testing.T) {
	p := NewPreprocessor(nil, PreprocessorConfig{})
	table := RawTable{
		Headers: []string{"Date of\nEncashment", "Name of the Political Party", "Denomination"},
		Rows: [][]any{
			{"20/Apr/2019", "PARTY\nA", "10,00,000"},
			{"", "", ""},
		},
	}

	records, _, err := p.Redemptions(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PARTY A", records[0].PoliticalParty)
	assert.Equal(t, int64(1000000), records[0].Amount.Int64)
	assert.Equal(t, 2019, records[0].Year)
	assert.Equal(t, 4, records[0].Month)
}

func TestPreprocessor_CustomMappingAndValidity(t *testing.T) {
	p := NewPreprocessor(nil, PreprocessorConfig{
		PurchaseColumns: ColumnMapping{"Date": FieldPurchaseDate, "Buyer": FieldDonorName, "Value": FieldAmount},
		ValidityPeriod:  24 * time.Hour,
	})
	table := RawTable{
		Headers: []string{"Buyer", "Value", "Date"},
		Rows:    [][]any{{"X", "5", "01/Jan/2020"}},
	}

	records, _, err := p.Purchases(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "X", records[0].DonorName)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), records[0].ValidityDate.Time)
}

func TestPreprocessor_MissingColumn(t *testing.T) {
	p := NewPreprocessor(nil, PreprocessorConfig{})
	_, _, err := p.Purchases(context.Background(), RawTable{
		Headers: []string{"Date of Purchase", "Denomination"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "donor_name")
}

func TestPreprocessor_CanonicalHeadersAccepted(t *testing.T) {
	p := NewPreprocessor(nil, PreprocessorConfig{})
	records, _, err := p.Purchases(context.Background(), RawTable{
		Headers: []string{"purchase_date", "donor_name", "amount"},
		Rows:    [][]any{{"01/Jan/2020", "X", 1000}},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1000), records[0].Amount.Int64)
}
