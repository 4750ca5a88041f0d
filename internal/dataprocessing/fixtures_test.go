package dataprocessing

import (
	"time"

	"bondscope/pkg/contracts/domain"
)

// purchase builds a normalized purchase dated by an ISO string; an empty
// date leaves the record undated.
func purchase(date, donor string, amount int64) domain.PurchaseRecord {
	rec := domain.PurchaseRecord{DonorName: donor, Amount: domain.NewAmount(amount)}
	if date != "" {
		t, err := time.Parse(domain.ISODate, date)
		if err != nil {
			panic(err)
		}
		rec.PurchaseDate = domain.NullDate{Time: t, Valid: true}
		rec.Year = t.Year()
		rec.Month = int(t.Month())
		rec.ValidityDate = domain.NullDate{Time: t.Add(domain.ValidityPeriod), Valid: true}
	}
	return rec
}

func redemption(date, party string, amount int64) domain.RedemptionRecord {
	rec := domain.RedemptionRecord{PoliticalParty: party, Amount: domain.NewAmount(amount)}
	if date != "" {
		t, err := time.Parse(domain.ISODate, date)
		if err != nil {
			panic(err)
		}
		rec.EncashmentDate = domain.NullDate{Time: t, Valid: true}
		rec.Year = t.Year()
		rec.Month = int(t.Month())
	}
	return rec
}

func samplePurchases() []domain.PurchaseRecord {
	return []domain.PurchaseRecord{
		purchase("2019-04-12", "ACME STEEL", 10000000),
		purchase("2019-04-12", "ACME STEEL", 10000000),
		purchase("2019-05-02", "BHARAT TRADERS", 1000000),
		purchase("2020-01-15", "CITY MART", 1000),
		purchase("2020-01-20", "CITY MART", 10000),
		purchase("2021-10-01", "DELTA POWER", 1000000000),
	}
}

func sampleRedemptions() []domain.RedemptionRecord {
	return []domain.RedemptionRecord{
		redemption("2019-04-20", "PARTY A", 10000000),
		redemption("2019-04-25", "PARTY B", 1000000),
		redemption("2019-04-26", "PARTY A", 10000000),
		redemption("2021-10-05", "PARTY C", 1000000000),
	}
}
