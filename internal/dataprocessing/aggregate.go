package dataprocessing

import (
	"sort"

	"bondscope/pkg/contracts/domain"
)

// ClassifyTier places a cumulative amount in its tier. The tier rank is one
// plus the number of thresholds the amount reaches, so a threshold itself
// belongs to the higher tier.
func ClassifyTier(total int64) domain.Tier {
	tier := domain.TierT1
	for _, threshold := range domain.TierThresholds {
		if total >= threshold {
			tier++
		}
	}
	return tier
}

// AggregateDonors sums purchases per donor and classifies each total.
// Rows without a donor name are skipped; missing amounts count as zero.
// The result is ordered by total descending, then by donor name ascending.
func AggregateDonors(purchases []domain.PurchaseRecord) []domain.DonorTotal {
	sums := make(map[string]int64)
	for _, p := range purchases {
		if p.DonorName == "" {
			continue
		}
		if p.Amount.Valid {
			sums[p.DonorName] += p.Amount.Int64
		} else if _, ok := sums[p.DonorName]; !ok {
			sums[p.DonorName] = 0
		}
	}

	totals := make([]domain.DonorTotal, 0, len(sums))
	for name, sum := range sums {
		totals = append(totals, domain.DonorTotal{
			DonorName:   name,
			TotalAmount: sum,
			Tier:        ClassifyTier(sum),
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].TotalAmount != totals[j].TotalAmount {
			return totals[i].TotalAmount > totals[j].TotalAmount
		}
		return totals[i].DonorName < totals[j].DonorName
	})
	return totals
}

// FindDonor returns the aggregated total for name.
func FindDonor(totals []domain.DonorTotal, name string) (domain.DonorTotal, error) {
	for _, t := range totals {
		if t.DonorName == name {
			return t, nil
		}
	}
	return domain.DonorTotal{}, ErrNotFound
}

// DonorNames returns the distinct donor names in ascending order.
func DonorNames(purchases []domain.PurchaseRecord) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, p := range purchases {
		if p.DonorName == "" {
			continue
		}
		if _, ok := seen[p.DonorName]; ok {
			continue
		}
		seen[p.DonorName] = struct{}{}
		names = append(names, p.DonorName)
	}
	sort.Strings(names)
	return names
}

// PurchasesBy returns the purchases made by one donor, in source order.
func PurchasesBy(purchases []domain.PurchaseRecord, donor string) []domain.PurchaseRecord {
	out := make([]domain.PurchaseRecord, 0)
	for _, p := range purchases {
		if p.DonorName == donor {
			out = append(out, p)
		}
	}
	return out
}
