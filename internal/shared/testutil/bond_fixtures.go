package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Sample dataset written by WriteBondDataset. Four donors across tiers
// T1, T2, T4 and T5, three redeeming parties, one undated purchase row.
const (
	SamplePurchasesCSV = `Sr No.,Date of Purchase,Purchaser Name,Denomination
1,12/Apr/2019,ACME STEEL,"1,00,00,000"
2,12/Apr/2019,ACME STEEL,"1,00,00,000"
3,02/May/2019,BHARAT TRADERS,"10,00,000"
4,15/Jan/2020,CITY MART,"1,000"
5,20/Jan/2020,CITY MART,"10,000"
6,01/Oct/2021,DELTA POWER,"1,00,00,00,000"
7,not a date,CITY MART,"1,000"
`

	SampleRedemptionsCSV = `Sr No.,Date of Encashment,Name of the Political Party,Denomination
1,20/Apr/2019,PARTY A,"1,00,00,000"
2,25/Apr/2019,PARTY B,"10,00,000"
3,26/Apr/2019,PARTY A,"1,00,00,000"
4,05/Oct/2021,PARTY C,"1,00,00,00,000"
`
)

// BondDataset points at a purchases/redemptions pair on disk.
type BondDataset struct {
	Dir             string
	PurchasesPath   string
	RedemptionsPath string
}

// WriteBondDataset writes the sample CSV pair into a fresh temp dir.
func WriteBondDataset(t *testing.T) BondDataset {
	t.Helper()
	return WriteBondDatasetWith(t, SamplePurchasesCSV, SampleRedemptionsCSV)
}

// WriteBondDatasetWith writes caller-supplied CSV content.
func WriteBondDatasetWith(t *testing.T, purchases, redemptions string) BondDataset {
	t.Helper()

	dir := t.TempDir()
	ds := BondDataset{
		Dir:             dir,
		PurchasesPath:   filepath.Join(dir, "purchases.csv"),
		RedemptionsPath: filepath.Join(dir, "redemptions.csv"),
	}
	writeFile(t, ds.PurchasesPath, purchases)
	writeFile(t, ds.RedemptionsPath, redemptions)
	return ds
}

// AppendPurchases adds raw CSV lines to the dataset's purchase file.
func (ds BondDataset) AppendPurchases(t *testing.T, lines ...string) {
	t.Helper()

	f, err := os.OpenFile(ds.PurchasesPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open purchases: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		t.Fatalf("append purchases: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
