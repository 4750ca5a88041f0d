package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/pkg/contracts/domain"
)

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		total int64
		want  domain.Tier
	}{
		{0, domain.TierT1},
		{99999, domain.TierT1},
		{100000, domain.TierT2},
		{4999999, domain.TierT2},
		{5000000, domain.TierT3},
		{9999999, domain.TierT3},
		{10000000, domain.TierT4},
		{499999999, domain.TierT4},
		{500000000, domain.TierT5},
		{12000000000, domain.TierT5},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTier(tt.total), "total %d", tt.total)
		})
	}
}

func TestAggregateDonors(t *testing.T) {
	t.Run("sums exactly per donor", func(t *testing.T) {
		totals := AggregateDonors(samplePurchases())
		require.Len(t, totals, 4)

		byName := map[string]domain.DonorTotal{}
		for _, d := range totals {
			byName[d.DonorName] = d
		}
		assert.Equal(t, int64(20000000), byName["ACME STEEL"].TotalAmount)
		assert.Equal(t, domain.TierT4, byName["ACME STEEL"].Tier)
		assert.Equal(t, int64(11000), byName["CITY MART"].TotalAmount)
		assert.Equal(t, domain.TierT1, byName["CITY MART"].Tier)
		assert.Equal(t, int64(1000000000), byName["DELTA POWER"].TotalAmount)
		assert.Equal(t, domain.TierT5, byName["DELTA POWER"].Tier)
	})

	t.Run("orders by total descending", func(t *testing.T) {
		totals := AggregateDonors(samplePurchases())
		names := make([]string, len(totals))
		for i, d := range totals {
			names[i] = d.DonorName
		}
		assert.Equal(t, []string{"DELTA POWER", "ACME STEEL", "BHARAT TRADERS", "CITY MART"}, names)
	})

	t.Run("equal totals order by name", func(t *testing.T) {
		purchases := []domain.PurchaseRecord{
			purchase("2019-04-12", "ZETA", 1000),
			purchase("2019-04-12", "ALPHA", 1000),
			purchase("2019-04-12", "MIKE", 1000),
			purchase("2019-04-12", "BIG", 5000),
		}
		totals := AggregateDonors(purchases)
		require.Len(t, totals, 4)
		assert.Equal(t, "BIG", totals[0].DonorName)
		assert.Equal(t, "ALPHA", totals[1].DonorName)
		assert.Equal(t, "MIKE", totals[2].DonorName)
		assert.Equal(t, "ZETA", totals[3].DonorName)
	})

	t.Run("skips nameless rows and tolerates missing amounts", func(t *testing.T) {
		purchases := []domain.PurchaseRecord{
			purchase("2019-04-12", "", 5000),
			{DonorName: "NO AMOUNT"},
			purchase("2019-04-12", "NO AMOUNT", 1000),
		}
		totals := AggregateDonors(purchases)
		require.Len(t, totals, 1)
		assert.Equal(t, "NO AMOUNT", totals[0].DonorName)
		assert.Equal(t, int64(1000), totals[0].TotalAmount)
	})

	t.Run("empty input yields empty result", func(t *testing.T) {
		assert.Empty(t, AggregateDonors(nil))
	})
}

func TestFindDonor(t *testing.T) {
	totals := AggregateDonors(samplePurchases())

	got, err := FindDonor(totals, "CITY MART")
	require.NoError(t, err)
	assert.Equal(t, int64(11000), got.TotalAmount)

	_, err = FindDonor(totals, "NOBODY")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDonorNames(t *testing.T) {
	names := DonorNames(samplePurchases())
	assert.Equal(t, []string{"ACME STEEL", "BHARAT TRADERS", "CITY MART", "DELTA POWER"}, names)
	assert.Empty(t, DonorNames(nil))
}

func TestPurchasesBy(t *testing.T) {
	own := PurchasesBy(samplePurchases(), "CITY MART")
	require.Len(t, own, 2)
	assert.Equal(t, int64(1000), own[0].Amount.Int64)
	assert.Equal(t, int64(10000), own[1].Amount.Int64)
}
