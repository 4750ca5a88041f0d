package dataprocessing

import (
	"sort"

	"bondscope/pkg/contracts/domain"
)

// RedemptionsByParty tallies encashments per party with each party's share of
// all redeemed money. Rows are ordered by encashment count descending, then
// party name. Redemptions without a party are left out of the tally but
// still count toward the total used for shares.
func RedemptionsByParty(redemptions []domain.RedemptionRecord) ([]domain.PartyRedemption, error) {
	if len(redemptions) == 0 {
		return nil, ErrEmptyInput
	}

	type tally struct {
		count int
		sum   int64
	}
	byParty := make(map[string]*tally)
	var grand int64
	for _, r := range redemptions {
		if r.Amount.Valid {
			grand += r.Amount.Int64
		}
		if r.PoliticalParty == "" {
			continue
		}
		t, ok := byParty[r.PoliticalParty]
		if !ok {
			t = &tally{}
			byParty[r.PoliticalParty] = t
		}
		t.count++
		if r.Amount.Valid {
			t.sum += r.Amount.Int64
		}
	}

	rows := make([]domain.PartyRedemption, 0, len(byParty))
	for party, t := range byParty {
		row := domain.PartyRedemption{
			PoliticalParty: party,
			Count:          t.count,
			TotalAmount:    t.sum,
		}
		if grand > 0 {
			row.PercentageShare = 100 * float64(t.sum) / float64(grand)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].PoliticalParty < rows[j].PoliticalParty
	})
	return rows, nil
}

// TotalPurchased sums every valid purchase amount.
func TotalPurchased(purchases []domain.PurchaseRecord) int64 {
	var total int64
	for _, p := range purchases {
		if p.Amount.Valid {
			total += p.Amount.Int64
		}
	}
	return total
}

// TotalRedeemed sums every valid redemption amount.
func TotalRedeemed(redemptions []domain.RedemptionRecord) int64 {
	var total int64
	for _, r := range redemptions {
		if r.Amount.Valid {
			total += r.Amount.Int64
		}
	}
	return total
}

// ComputeDiscrepancy compares the money issued with the money encashed.
// Each side is summed independently, so no row is counted twice.
func ComputeDiscrepancy(purchases []domain.PurchaseRecord, redemptions []domain.RedemptionRecord) domain.Discrepancy {
	purchased := TotalPurchased(purchases)
	redeemed := TotalRedeemed(redemptions)
	return domain.Discrepancy{
		Purchased:  purchased,
		Redeemed:   redeemed,
		Difference: purchased - redeemed,
	}
}
