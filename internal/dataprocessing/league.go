package dataprocessing

import (
	"bondscope/pkg/contracts/domain"
)

// BuildLeague distributes donors and money across tiers. One row is produced
// per tier that has at least one donor, lowest tier first.
func BuildLeague(totals []domain.DonorTotal) ([]domain.LeagueRow, error) {
	if len(totals) == 0 {
		return nil, ErrEmptyInput
	}

	var (
		counts [domain.TierT5 + 1]int
		sums   [domain.TierT5 + 1]int64
		grand  int64
	)
	for _, t := range totals {
		tier := t.Tier
		if tier < domain.TierT1 || tier > domain.TierT5 {
			tier = ClassifyTier(t.TotalAmount)
		}
		counts[tier]++
		sums[tier] += t.TotalAmount
		grand += t.TotalAmount
	}

	rows := make([]domain.LeagueRow, 0, len(counts))
	for tier := domain.TierT1; tier <= domain.TierT5; tier++ {
		if counts[tier] == 0 {
			continue
		}
		row := domain.LeagueRow{
			Tier:            tier,
			Bananas:         tier.Bananas(),
			DonorCount:      counts[tier],
			TotalAmount:     sums[tier],
			CountPercentage: 100 * float64(counts[tier]) / float64(len(totals)),
		}
		// all-zero totals leave the amount share undefined; report 0
		if grand > 0 {
			row.AmountPercentage = 100 * float64(sums[tier]) / float64(grand)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
