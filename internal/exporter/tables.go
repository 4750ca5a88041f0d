package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"bondscope/pkg/contracts/domain"
)

// Export file names.
const (
	DonorsFile      = "donors.csv"
	LeagueFile      = "league.csv"
	PartiesFile     = "parties.csv"
	TimelineFile    = "timeline.csv"
	PurchasesFile   = "purchases_clean.csv"
	RedemptionsFile = "redemptions_clean.csv"
)

// TableExporter writes analysis tables as CSV.
type TableExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewTableExporter creates an exporter writing into dir.
func NewTableExporter(dir string, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{
		writer: NewCSVWriter(dir, logger),
		logger: logger.With(slog.String("component", "table_exporter")),
	}
}

// ExportDonors writes donor totals in the given order.
func (e *TableExporter) ExportDonors(totals []domain.DonorTotal) error {
	records := make([][]string, 0, len(totals))
	for _, t := range totals {
		records = append(records, []string{t.DonorName, formatInt(t.TotalAmount), t.Tier.String()})
	}
	return e.write(DonorsFile, []string{"donor_name", "total_amount", "tier"}, records)
}

// ExportLeague writes the tier league.
func (e *TableExporter) ExportLeague(rows []domain.LeagueRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Tier.String(),
			strconv.Itoa(r.DonorCount),
			formatInt(r.TotalAmount),
			formatFloat(r.CountPercentage),
			formatFloat(r.AmountPercentage),
		})
	}
	return e.write(LeagueFile,
		[]string{"tier", "donor_count", "total_amount", "count_percentage", "amount_percentage"}, records)
}

// ExportParties writes the per-party redemption table.
func (e *TableExporter) ExportParties(rows []domain.PartyRedemption) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.PoliticalParty,
			strconv.Itoa(r.Count),
			formatInt(r.TotalAmount),
			formatFloat(r.PercentageShare),
		})
	}
	return e.write(PartiesFile,
		[]string{"political_party", "count_of_encashments", "total_amount", "percentage_share"}, records)
}

// ExportTimeline writes monthly issued and encashed totals.
func (e *TableExporter) ExportTimeline(points []domain.TimelinePoint) error {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		records = append(records, []string{
			fmt.Sprintf("%04d-%02d", p.Year, p.Month),
			formatInt(p.Issued),
			formatInt(p.Encashed),
		})
	}
	return e.write(TimelineFile, []string{"month", "issued", "encashed"}, records)
}

// ExportPurchases streams normalized purchase rows. Missing values are
// written as empty cells.
func (e *TableExporter) ExportPurchases(purchases []domain.PurchaseRecord) error {
	stream, err := e.writer.CreateStreamWriter(PurchasesFile,
		[]string{"purchase_date", "donor_name", "amount", "year", "month", "validity_date"})
	if err != nil {
		return err
	}
	for _, p := range purchases {
		if err := stream.WriteRecord([]string{
			formatDate(p.PurchaseDate),
			p.DonorName,
			formatAmount(p.Amount),
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Month),
			formatDate(p.ValidityDate),
		}); err != nil {
			stream.Close()
			return fmt.Errorf("write purchase row: %w", err)
		}
	}
	return stream.Close()
}

// ExportRedemptions streams normalized redemption rows.
func (e *TableExporter) ExportRedemptions(redemptions []domain.RedemptionRecord) error {
	stream, err := e.writer.CreateStreamWriter(RedemptionsFile,
		[]string{"encashment_date", "political_party", "amount", "year", "month"})
	if err != nil {
		return err
	}
	for _, r := range redemptions {
		if err := stream.WriteRecord([]string{
			formatDate(r.EncashmentDate),
			r.PoliticalParty,
			formatAmount(r.Amount),
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Month),
		}); err != nil {
			stream.Close()
			return fmt.Errorf("write redemption row: %w", err)
		}
	}
	return stream.Close()
}

func (e *TableExporter) write(name string, headers []string, records [][]string) error {
	if err := e.writer.WriteSimpleCSV(name, headers, records); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	return nil
}
