package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/pkg/contracts/domain"
)

func TestBuildLeague(t *testing.T) {
	t.Run("rows per present tier in tier order", func(t *testing.T) {
		rows, err := BuildLeague(AggregateDonors(samplePurchases()))
		require.NoError(t, err)

		tiers := make([]domain.Tier, len(rows))
		for i, r := range rows {
			tiers[i] = r.Tier
		}
		// BHARAT TRADERS (1000000) is T2, no donor is T3
		assert.Equal(t, []domain.Tier{domain.TierT1, domain.TierT2, domain.TierT4, domain.TierT5}, tiers)
		assert.Equal(t, "🍌", rows[0].Bananas)
	})

	t.Run("percentages sum to one hundred", func(t *testing.T) {
		fixtures := [][]domain.DonorTotal{
			AggregateDonors(samplePurchases()),
			{{DonorName: "A", TotalAmount: 1, Tier: domain.TierT1}},
			{
				{DonorName: "A", TotalAmount: 7, Tier: domain.TierT1},
				{DonorName: "B", TotalAmount: 300000, Tier: domain.TierT2},
				{DonorName: "C", TotalAmount: 300001, Tier: domain.TierT2},
			},
		}
		for _, totals := range fixtures {
			rows, err := BuildLeague(totals)
			require.NoError(t, err)

			var countPct, amountPct float64
			for _, r := range rows {
				countPct += r.CountPercentage
				amountPct += r.AmountPercentage
			}
			assert.InDelta(t, 100, countPct, 1e-9)
			assert.InDelta(t, 100, amountPct, 1e-9)
		}
	})

	t.Run("counts and sums per tier", func(t *testing.T) {
		totals := []domain.DonorTotal{
			{DonorName: "A", TotalAmount: 1000, Tier: domain.TierT1},
			{DonorName: "B", TotalAmount: 3000, Tier: domain.TierT1},
			{DonorName: "C", TotalAmount: 6000000, Tier: domain.TierT3},
		}
		rows, err := BuildLeague(totals)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, 2, rows[0].DonorCount)
		assert.Equal(t, int64(4000), rows[0].TotalAmount)
		assert.InDelta(t, 66.6667, rows[0].CountPercentage, 1e-3)
		assert.Equal(t, 1, rows[1].DonorCount)
		assert.InDelta(t, 100*6000000.0/6004000.0, rows[1].AmountPercentage, 1e-9)
	})

	t.Run("all zero totals", func(t *testing.T) {
		rows, err := BuildLeague([]domain.DonorTotal{{DonorName: "A", Tier: domain.TierT1}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 100.0, rows[0].CountPercentage)
		assert.Equal(t, 0.0, rows[0].AmountPercentage)
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := BuildLeague(nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}
