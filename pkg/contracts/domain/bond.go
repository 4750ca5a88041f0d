package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ISODate is the wire format for dates in API responses and exports.
const ISODate = "2006-01-02"

// ValidityPeriod is how long a purchased bond stays redeemable.
const ValidityPeriod = 15 * 24 * time.Hour

// NullDate is a calendar date that may be missing.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid NullDate truncated to the day.
func NewDate(year int, month time.Month, day int) NullDate {
	return NullDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// MarshalJSON renders a missing date as null.
func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(ISODate))
}

// String implements fmt.Stringer.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(ISODate)
}

// NullAmount is a rupee amount that may be missing.
type NullAmount struct {
	Int64 int64
	Valid bool
}

// NewAmount returns a valid NullAmount.
func NewAmount(v int64) NullAmount {
	return NullAmount{Int64: v, Valid: true}
}

// MarshalJSON renders a missing amount as null.
func (a NullAmount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Int64)
}

// PurchaseRecord is one normalized row of the bond purchase disclosure.
// An empty DonorName means the name was missing or unparseable.
// Year and Month are zero when PurchaseDate is missing.
type PurchaseRecord struct {
	PurchaseDate NullDate   `json:"purchase_date"`
	DonorName    string     `json:"donor_name"`
	Amount       NullAmount `json:"amount"`
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	ValidityDate NullDate   `json:"validity_date"`
}

// HasDate reports whether the purchase date parsed.
func (r PurchaseRecord) HasDate() bool { return r.PurchaseDate.Valid }

// RedemptionRecord is one normalized row of the bond encashment disclosure.
type RedemptionRecord struct {
	EncashmentDate NullDate   `json:"encashment_date"`
	PoliticalParty string     `json:"political_party"`
	Amount         NullAmount `json:"amount"`
	Year           int        `json:"year"`
	Month          int        `json:"month"`
}

// HasDate reports whether the encashment date parsed.
func (r RedemptionRecord) HasDate() bool { return r.EncashmentDate.Valid }

// Tier is the ordinal donor classification by cumulative amount.
type Tier int

const (
	TierT1 Tier = iota + 1
	TierT2
	TierT3
	TierT4
	TierT5
)

// TierThresholds are the lower bounds of T2 through T5, in rupees.
var TierThresholds = [...]int64{100000, 5000000, 10000000, 500000000}

// String returns the tier name, e.g. "T3".
func (t Tier) String() string {
	if t < TierT1 || t > TierT5 {
		return "T?"
	}
	return "T" + string(rune('0'+int(t)))
}

// Bananas renders the tier as a banana count, one per rank.
func (t Tier) Bananas() string {
	if t < TierT1 || t > TierT5 {
		return ""
	}
	return strings.Repeat("🍌", int(t))
}

// ParseTier parses a tier name such as "T3" or "t3".
func ParseTier(s string) (Tier, bool) {
	if len(s) != 2 || (s[0] != 'T' && s[0] != 't') || s[1] < '1' || s[1] > '5' {
		return 0, false
	}
	return Tier(s[1] - '0'), true
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// DonorTotal is the cumulative purchase amount of one donor.
type DonorTotal struct {
	DonorName   string `json:"donor_name"`
	TotalAmount int64  `json:"total_amount"`
	Tier        Tier   `json:"tier"`
}

// LeagueRow is the share of donors and money that falls in one tier.
type LeagueRow struct {
	Tier             Tier    `json:"tier"`
	Bananas          string  `json:"bananas"`
	DonorCount       int     `json:"donor_count"`
	TotalAmount      int64   `json:"total_amount"`
	CountPercentage  float64 `json:"count_percentage"`
	AmountPercentage float64 `json:"amount_percentage"`
}

// AmountDistribution describes the amounts of a record subset.
// Mean and Median are rounded to two decimals, half away from zero.
// Mode is the smallest of the most frequent amounts.
type AmountDistribution struct {
	Mean                float64 `json:"mean"`
	Median              float64 `json:"median"`
	Mode                int64   `json:"mode"`
	ModeFrequency       int     `json:"mode_frequency"`
	UniqueDenominations int     `json:"unique_denominations"`
	Denominations       []int64 `json:"denominations"`
}

// YearRange is the inclusive span of years covered by a record subset.
type YearRange struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// GlobalStats summarizes every purchase.
type GlobalStats struct {
	NumDonations  int   `json:"num_donations"`
	NumDonors     int   `json:"num_donors"`
	TotalDonation int64 `json:"total_donation"`
	AmountDistribution
	YearRange
}

// DonorStats summarizes the purchases of one donor.
type DonorStats struct {
	DonorName     string `json:"donor_name"`
	Tier          Tier   `json:"tier"`
	NumDonations  int    `json:"num_donations"`
	TotalDonation int64  `json:"total_donation"`
	AmountDistribution
	YearRange
}

// PartyStats summarizes redemptions.
type PartyStats struct {
	NumEncashments int   `json:"num_encashments"`
	NumParties     int   `json:"num_parties"`
	TotalEncashed  int64 `json:"total_encashed"`
	AmountDistribution
	YearRange
}

// PartyRedemption is one party's share of all redeemed money.
type PartyRedemption struct {
	PoliticalParty  string  `json:"political_party"`
	Count           int     `json:"count_of_encashments"`
	TotalAmount     int64   `json:"total_amount"`
	PercentageShare float64 `json:"percentage_share"`
}

// TimelinePoint is the money issued and encashed in one calendar month.
type TimelinePoint struct {
	Year     int   `json:"year"`
	Month    int   `json:"month"`
	Issued   int64 `json:"issued"`
	Encashed int64 `json:"encashed"`
}

// HeatmapTable counts records per year (rows) and month (columns, January first).
type HeatmapTable struct {
	Years  []int     `json:"years"`
	Counts [][12]int `json:"counts"`
}

// DayVolume counts records per day of month; index 0 is the 1st.
type DayVolume [31]int

// Discrepancy compares money issued with money encashed.
type Discrepancy struct {
	Purchased  int64 `json:"purchased"`
	Redeemed   int64 `json:"redeemed"`
	Difference int64 `json:"difference"`
}
