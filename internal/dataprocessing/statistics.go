package dataprocessing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"bondscope/pkg/contracts/domain"
)

// ComputeGlobalStats summarizes every purchase. It fails with ErrEmptyRange
// when there are no purchases or none of them is dated, and with
// ErrEmptyInput when no purchase has a valid amount.
func ComputeGlobalStats(purchases []domain.PurchaseRecord) (domain.GlobalStats, error) {
	if len(purchases) == 0 {
		return domain.GlobalStats{}, fmt.Errorf("purchase statistics: %w", ErrEmptyRange)
	}

	amounts, years, donors := splitPurchases(purchases)
	span, err := yearRange(years)
	if err != nil {
		return domain.GlobalStats{}, fmt.Errorf("purchase statistics: %w", err)
	}
	dist, total, err := distribution(amounts)
	if err != nil {
		return domain.GlobalStats{}, fmt.Errorf("purchase statistics: %w", err)
	}

	return domain.GlobalStats{
		NumDonations:       len(purchases),
		NumDonors:          len(donors),
		TotalDonation:      total,
		AmountDistribution: dist,
		YearRange:          span,
	}, nil
}

// ComputeDonorStats summarizes the purchases of one donor. The donor's tier
// is looked up in totals; a donor absent from totals fails with ErrNotFound.
func ComputeDonorStats(name string, purchases []domain.PurchaseRecord, totals []domain.DonorTotal) (domain.DonorStats, error) {
	donor, err := FindDonor(totals, name)
	if err != nil {
		return domain.DonorStats{}, fmt.Errorf("donor %q: %w", name, err)
	}

	own := PurchasesBy(purchases, name)
	if len(own) == 0 {
		return domain.DonorStats{}, fmt.Errorf("donor %q: %w", name, ErrEmptyRange)
	}

	amounts, years, _ := splitPurchases(own)
	span, err := yearRange(years)
	if err != nil {
		return domain.DonorStats{}, fmt.Errorf("donor %q: %w", name, err)
	}
	dist, total, err := distribution(amounts)
	if err != nil {
		return domain.DonorStats{}, fmt.Errorf("donor %q: %w", name, err)
	}

	return domain.DonorStats{
		DonorName:          name,
		Tier:               donor.Tier,
		NumDonations:       len(own),
		TotalDonation:      total,
		AmountDistribution: dist,
		YearRange:          span,
	}, nil
}

// ComputePartyStats summarizes redemptions with the same rules as
// ComputeGlobalStats.
func ComputePartyStats(redemptions []domain.RedemptionRecord) (domain.PartyStats, error) {
	if len(redemptions) == 0 {
		return domain.PartyStats{}, fmt.Errorf("redemption statistics: %w", ErrEmptyRange)
	}

	amounts := make([]int64, 0, len(redemptions))
	years := make([]int, 0, len(redemptions))
	parties := make(map[string]struct{})
	for _, r := range redemptions {
		if r.Amount.Valid {
			amounts = append(amounts, r.Amount.Int64)
		}
		if r.HasDate() {
			years = append(years, r.Year)
		}
		if r.PoliticalParty != "" {
			parties[r.PoliticalParty] = struct{}{}
		}
	}

	span, err := yearRange(years)
	if err != nil {
		return domain.PartyStats{}, fmt.Errorf("redemption statistics: %w", err)
	}
	dist, total, err := distribution(amounts)
	if err != nil {
		return domain.PartyStats{}, fmt.Errorf("redemption statistics: %w", err)
	}

	return domain.PartyStats{
		NumEncashments:     len(redemptions),
		NumParties:         len(parties),
		TotalEncashed:      total,
		AmountDistribution: dist,
		YearRange:          span,
	}, nil
}

func splitPurchases(purchases []domain.PurchaseRecord) ([]int64, []int, map[string]struct{}) {
	amounts := make([]int64, 0, len(purchases))
	years := make([]int, 0, len(purchases))
	donors := make(map[string]struct{})
	for _, p := range purchases {
		if p.Amount.Valid {
			amounts = append(amounts, p.Amount.Int64)
		}
		if p.HasDate() {
			years = append(years, p.Year)
		}
		if p.DonorName != "" {
			donors[p.DonorName] = struct{}{}
		}
	}
	return amounts, years, donors
}

func yearRange(years []int) (domain.YearRange, error) {
	if len(years) == 0 {
		return domain.YearRange{}, ErrEmptyRange
	}
	span := domain.YearRange{StartYear: years[0], EndYear: years[0]}
	for _, y := range years[1:] {
		if y < span.StartYear {
			span.StartYear = y
		}
		if y > span.EndYear {
			span.EndYear = y
		}
	}
	return span, nil
}

// distribution computes mean, median and mode over amounts and returns the
// exact integer sum alongside.
func distribution(amounts []int64) (domain.AmountDistribution, int64, error) {
	if len(amounts) == 0 {
		return domain.AmountDistribution{}, 0, ErrEmptyInput
	}

	sorted := make([]int64, len(amounts))
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total int64
	freq := make(map[int64]int, len(sorted))
	denominations := make([]int64, 0)
	for _, a := range sorted {
		total += a
		if freq[a] == 0 {
			denominations = append(denominations, a)
		}
		freq[a]++
	}

	// ascending scan with strict > keeps the smallest amount on ties
	mode, modeFreq := denominations[0], freq[denominations[0]]
	for _, d := range denominations[1:] {
		if freq[d] > modeFreq {
			mode, modeFreq = d, freq[d]
		}
	}

	n := decimal.NewFromInt(int64(len(sorted)))
	mean := decimal.NewFromInt(total).Div(n)

	mid := len(sorted) / 2
	median := decimal.NewFromInt(sorted[mid])
	if len(sorted)%2 == 0 {
		median = decimal.NewFromInt(sorted[mid-1]).Add(median).Div(decimal.NewFromInt(2))
	}

	return domain.AmountDistribution{
		Mean:                round2(mean),
		Median:              round2(median),
		Mode:                mode,
		ModeFrequency:       modeFreq,
		UniqueDenominations: len(denominations),
		Denominations:       denominations,
	}, total, nil
}

// round2 rounds half away from zero to two decimals.
func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
