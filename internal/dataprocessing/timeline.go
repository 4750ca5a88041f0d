package dataprocessing

import (
	"sort"
	"strings"
	"time"

	"bondscope/pkg/contracts/domain"
)

type yearMonth struct {
	year  int
	month int
}

// MonthlyTimeline sums money issued and encashed per calendar month, covering
// every month present in either table, oldest first. Undated rows are skipped.
func MonthlyTimeline(purchases []domain.PurchaseRecord, redemptions []domain.RedemptionRecord) []domain.TimelinePoint {
	points := make(map[yearMonth]*domain.TimelinePoint)
	at := func(y, m int) *domain.TimelinePoint {
		k := yearMonth{y, m}
		p, ok := points[k]
		if !ok {
			p = &domain.TimelinePoint{Year: y, Month: m}
			points[k] = p
		}
		return p
	}

	for _, p := range purchases {
		if !p.HasDate() {
			continue
		}
		pt := at(p.Year, p.Month)
		if p.Amount.Valid {
			pt.Issued += p.Amount.Int64
		}
	}
	for _, r := range redemptions {
		if !r.HasDate() {
			continue
		}
		pt := at(r.Year, r.Month)
		if r.Amount.Valid {
			pt.Encashed += r.Amount.Int64
		}
	}

	out := make([]domain.TimelinePoint, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// PurchaseHeatmap counts purchases per year and month.
func PurchaseHeatmap(purchases []domain.PurchaseRecord) domain.HeatmapTable {
	dates := make([]time.Time, 0, len(purchases))
	for _, p := range purchases {
		if p.HasDate() {
			dates = append(dates, p.PurchaseDate.Time)
		}
	}
	return heatmap(dates)
}

// RedemptionHeatmap counts redemptions per year and month.
func RedemptionHeatmap(redemptions []domain.RedemptionRecord) domain.HeatmapTable {
	dates := make([]time.Time, 0, len(redemptions))
	for _, r := range redemptions {
		if r.HasDate() {
			dates = append(dates, r.EncashmentDate.Time)
		}
	}
	return heatmap(dates)
}

func heatmap(dates []time.Time) domain.HeatmapTable {
	byYear := make(map[int]*[12]int)
	for _, d := range dates {
		row, ok := byYear[d.Year()]
		if !ok {
			row = &[12]int{}
			byYear[d.Year()] = row
		}
		row[d.Month()-1]++
	}

	table := domain.HeatmapTable{
		Years:  make([]int, 0, len(byYear)),
		Counts: make([][12]int, 0, len(byYear)),
	}
	for y := range byYear {
		table.Years = append(table.Years, y)
	}
	sort.Ints(table.Years)
	for _, y := range table.Years {
		table.Counts = append(table.Counts, *byYear[y])
	}
	return table
}

// PurchaseDayVolume counts purchases per day of month.
func PurchaseDayVolume(purchases []domain.PurchaseRecord) domain.DayVolume {
	var v domain.DayVolume
	for _, p := range purchases {
		if p.HasDate() {
			v[p.PurchaseDate.Time.Day()-1]++
		}
	}
	return v
}

// RedemptionDayVolume counts redemptions per day of month.
func RedemptionDayVolume(redemptions []domain.RedemptionRecord) domain.DayVolume {
	var v domain.DayVolume
	for _, r := range redemptions {
		if r.HasDate() {
			v[r.EncashmentDate.Time.Day()-1]++
		}
	}
	return v
}

// WordCloudText joins every donor name, upper-cased, for a word-cloud renderer.
func WordCloudText(purchases []domain.PurchaseRecord) string {
	names := make([]string, 0, len(purchases))
	for _, p := range purchases {
		if p.DonorName != "" {
			names = append(names, p.DonorName)
		}
	}
	return strings.ToUpper(strings.Join(names, " "))
}
