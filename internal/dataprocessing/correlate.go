package dataprocessing

import (
	"time"

	"bondscope/pkg/contracts/domain"
)

// Window is the span during which a donor's bonds could have been redeemed.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ValidityWindow spans from the earliest purchase date to the latest validity
// date of purchases. It reports false when no purchase is dated.
func ValidityWindow(purchases []domain.PurchaseRecord) (Window, bool) {
	var (
		w     Window
		found bool
	)
	for _, p := range purchases {
		if !p.HasDate() {
			continue
		}
		if !found || p.PurchaseDate.Time.Before(w.Start) {
			w.Start = p.PurchaseDate.Time
		}
		if p.ValidityDate.Valid && (!found || p.ValidityDate.Time.After(w.End)) {
			w.End = p.ValidityDate.Time
		}
		found = true
	}
	if found && w.End.Before(w.Start) {
		w.End = w.Start
	}
	return w, found
}

// Correlate counts, per party, the redemptions encashed inside the validity
// window of donorPurchases.
//
// This is an approximate, time-based association only. The disclosures carry
// no bond identifiers, so a count here does not mean the donor's bonds were
// the ones the party redeemed; any bond bought by anyone in the same window
// is counted alike.
//
// The result is empty, never nil, when the donor has no dated purchase or no
// redemption falls in the window. Redemptions without a date or party are
// skipped.
func Correlate(donorPurchases []domain.PurchaseRecord, redemptions []domain.RedemptionRecord) map[string]int {
	counts := make(map[string]int)
	w, ok := ValidityWindow(donorPurchases)
	if !ok {
		return counts
	}
	for _, r := range redemptions {
		if !r.HasDate() || r.PoliticalParty == "" {
			continue
		}
		if w.Contains(r.EncashmentDate.Time) {
			counts[r.PoliticalParty]++
		}
	}
	return counts
}
