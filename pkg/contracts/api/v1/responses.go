package api

import (
	"time"

	"bondscope/pkg/contracts/domain"
)

// DatasetInfo describes the currently loaded dataset.
type DatasetInfo struct {
	ID          string    `json:"id"`
	LoadedAt    time.Time `json:"loaded_at"`
	Purchases   TableInfo `json:"purchases"`
	Redemptions TableInfo `json:"redemptions"`
}

// TableInfo counts the records of one table and the fields that failed to
// parse. Unparseable fields leave the record in place with a missing value.
type TableInfo struct {
	Records        int `json:"records"`
	InvalidDates   int `json:"invalid_dates"`
	InvalidAmounts int `json:"invalid_amounts"`
	InvalidNames   int `json:"invalid_names"`
}

// Overview is the landing summary: both aggregate statistics blocks and the
// purchased-versus-redeemed check.
type Overview struct {
	Global            domain.GlobalStats `json:"global"`
	Parties           *domain.PartyStats `json:"parties,omitempty"`
	Discrepancy       domain.Discrepancy `json:"discrepancy"`
	PurchasedINR      string             `json:"purchased_inr"`
	RedeemedINR       string             `json:"redeemed_inr"`
	DifferenceINR     string             `json:"difference_inr"`
	DifferenceWords   string             `json:"difference_words"`
	DifferenceSpelled string             `json:"difference_spelled"`
	Dataset           DatasetInfo        `json:"dataset"`
}

// DonorPage is one page of the donor totals table. Total counts every
// donor matching the filters.
type DonorPage struct {
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Donors []domain.DonorTotal `json:"donors"`
}

// DonorDetail is everything shown for a single donor.
type DonorDetail struct {
	Stats        domain.DonorStats `json:"stats"`
	TotalINR     string            `json:"total_inr"`
	TotalWords   string            `json:"total_words"`
	TotalSpelled string            `json:"total_spelled"`
	Correlation  Correlation       `json:"correlation"`
	SearchURL    string            `json:"search_url"`
}

// Correlation is the count of redemptions per party inside a donor's
// validity window. The association is approximate: a redemption inside the
// window is not evidence that it used this donor's bond.
type Correlation struct {
	Donor       string         `json:"donor"`
	WindowStart string         `json:"window_start,omitempty"`
	WindowEnd   string         `json:"window_end,omitempty"`
	Parties     map[string]int `json:"parties"`
}

// SearchLink is the external news search URL for a donor.
type SearchLink struct {
	Donor string `json:"donor"`
	URL   string `json:"url"`
}

// ReloadResult reports a completed dataset reload.
type ReloadResult struct {
	Dataset       DatasetInfo `json:"dataset"`
	CacheEntries  int         `json:"cache_entries_dropped"`
	DurationMilli int64       `json:"duration_ms"`
}

// CacheStats reports analysis result cache usage.
type CacheStats struct {
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// WordCloudText is the space-joined donor name corpus.
type WordCloudText struct {
	Text  string `json:"text"`
	Words int    `json:"words"`
}
