package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/pkg/contracts/domain"
)

func TestMonthlyTimeline(t *testing.T) {
	points := MonthlyTimeline(samplePurchases(), sampleRedemptions())

	want := []domain.TimelinePoint{
		{Year: 2019, Month: 4, Issued: 20000000, Encashed: 21000000},
		{Year: 2019, Month: 5, Issued: 1000000},
		{Year: 2020, Month: 1, Issued: 11000},
		{Year: 2021, Month: 10, Issued: 1000000000, Encashed: 1000000000},
	}
	assert.Equal(t, want, points)
}

func TestMonthlyTimeline_MonthsOnlyInRedemptions(t *testing.T) {
	points := MonthlyTimeline(nil, []domain.RedemptionRecord{
		redemption("2019-04-20", "A", 10),
		redemption("", "A", 99),
	})
	assert.Equal(t, []domain.TimelinePoint{{Year: 2019, Month: 4, Encashed: 10}}, points)
}

func TestPurchaseHeatmap(t *testing.T) {
	table := PurchaseHeatmap(samplePurchases())
	require.Equal(t, []int{2019, 2020, 2021}, table.Years)
	require.Len(t, table.Counts, 3)

	assert.Equal(t, 2, table.Counts[0][3]) // April 2019
	assert.Equal(t, 1, table.Counts[0][4]) // May 2019
	assert.Equal(t, 2, table.Counts[1][0]) // January 2020
	assert.Equal(t, 1, table.Counts[2][9]) // October 2021
}

func TestRedemptionHeatmap_Empty(t *testing.T) {
	table := RedemptionHeatmap(nil)
	assert.Empty(t, table.Years)
	assert.Empty(t, table.Counts)
}

func TestDayVolume(t *testing.T) {
	v := PurchaseDayVolume(samplePurchases())
	assert.Equal(t, 2, v[11]) // 12th
	assert.Equal(t, 1, v[0])  // 1st
	assert.Equal(t, 1, v[14]) // 15th

	var total int
	for _, c := range v {
		total += c
	}
	assert.Equal(t, 6, total)

	r := RedemptionDayVolume(sampleRedemptions())
	assert.Equal(t, 1, r[19])
	assert.Equal(t, 1, r[4])
}

func TestWordCloudText(t *testing.T) {
	text := WordCloudText([]domain.PurchaseRecord{
		purchase("2019-04-12", "Acme Steel", 1),
		purchase("2019-04-12", "", 1),
		purchase("2019-04-12", "city mart", 1),
	})
	assert.Equal(t, "ACME STEEL CITY MART", text)
}
