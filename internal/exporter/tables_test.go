package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/internal/shared/testutil"
	"bondscope/pkg/contracts/domain"
)

func newTestExporter(t *testing.T) (*TableExporter, string) {
	t.Helper()
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)
	return NewTableExporter(dir, logger), dir
}

func TestTableExporter_Tables(t *testing.T) {
	tests := []struct {
		name     string
		export   func(e *TableExporter) error
		file     string
		expected []string
	}{
		{
			name: "donors",
			export: func(e *TableExporter) error {
				return e.ExportDonors([]domain.DonorTotal{
					{DonorName: "ACME LTD", TotalAmount: 10000000, Tier: domain.TierT4},
					{DonorName: "BETA CORP", TotalAmount: 1000, Tier: domain.TierT1},
				})
			},
			file: DonorsFile,
			expected: []string{
				"donor_name,total_amount,tier",
				"ACME LTD,10000000,T4",
				"BETA CORP,1000,T1",
			},
		},
		{
			name: "league",
			export: func(e *TableExporter) error {
				return e.ExportLeague([]domain.LeagueRow{
					{Tier: domain.TierT1, DonorCount: 1, TotalAmount: 1000, CountPercentage: 50, AmountPercentage: 0.009999},
				})
			},
			file:     LeagueFile,
			expected: []string{"tier,donor_count,total_amount,count_percentage,amount_percentage", "T1,1,1000,50.00,0.01"},
		},
		{
			name: "parties",
			export: func(e *TableExporter) error {
				return e.ExportParties([]domain.PartyRedemption{
					{PoliticalParty: "PARTY A", Count: 3, TotalAmount: 750000, PercentageShare: 75},
				})
			},
			file:     PartiesFile,
			expected: []string{"political_party,count_of_encashments,total_amount,percentage_share", "PARTY A,3,750000,75.00"},
		},
		{
			name: "timeline",
			export: func(e *TableExporter) error {
				return e.ExportTimeline([]domain.TimelinePoint{{Year: 2019, Month: 4, Issued: 100, Encashed: 50}})
			},
			file:     TimelineFile,
			expected: []string{"month,issued,encashed", "2019-04,100,50"},
		},
		{
			name: "purchases with missing values",
			export: func(e *TableExporter) error {
				return e.ExportPurchases([]domain.PurchaseRecord{
					{
						PurchaseDate: domain.NewDate(2023, 1, 1),
						DonorName:    "ACME LTD",
						Amount:       domain.NewAmount(1000),
						Year:         2023,
						Month:        1,
						ValidityDate: domain.NewDate(2023, 1, 16),
					},
					{DonorName: "CITY MART"},
				})
			},
			file: PurchasesFile,
			expected: []string{
				"purchase_date,donor_name,amount,year,month,validity_date",
				"2023-01-01,ACME LTD,1000,2023,1,2023-01-16",
				",CITY MART,,0,0,",
			},
		},
		{
			name: "redemptions",
			export: func(e *TableExporter) error {
				return e.ExportRedemptions([]domain.RedemptionRecord{
					{EncashmentDate: domain.NewDate(2023, 1, 10), PoliticalParty: "PARTY A", Amount: domain.NewAmount(500), Year: 2023, Month: 1},
				})
			},
			file:     RedemptionsFile,
			expected: []string{"encashment_date,political_party,amount,year,month", "2023-01-10,PARTY A,500,2023,1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, dir := newTestExporter(t)
			require.NoError(t, tt.export(e))
			assert.Equal(t, tt.expected, readLines(t, filepath.Join(dir, tt.file)))
		})
	}
}

func TestTableExporter_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	// a regular file where the directory should be
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, NewCSVWriter("", nil).WriteSimpleCSV(blocker, nil, nil))

	bad := NewTableExporter(blocker, nil)
	err := bad.ExportDonors(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), DonorsFile)
}
