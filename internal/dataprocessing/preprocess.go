package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bondscope/pkg/contracts/domain"
)

// RawTable is a loaded sheet before normalization. Cells hold whatever the
// source produced: strings from spreadsheets and CSV, numbers from JSON.
type RawTable struct {
	Headers []string
	Rows    [][]any
}

// PreprocessorConfig holds the column mappings and validity period.
type PreprocessorConfig struct {
	PurchaseColumns   ColumnMapping
	RedemptionColumns ColumnMapping
	ValidityPeriod    time.Duration
}

// Preprocessor turns raw disclosure tables into normalized records.
type Preprocessor struct {
	logger *slog.Logger
	config PreprocessorConfig
}

// PreprocessReport counts what normalization dropped or blanked.
type PreprocessReport struct {
	RowsIn         int `json:"rows_in"`
	EmptyRows      int `json:"empty_rows"`
	InvalidDates   int `json:"invalid_dates"`
	InvalidAmounts int `json:"invalid_amounts"`
	InvalidNames   int `json:"invalid_names"`
}

// NewPreprocessor creates a Preprocessor, filling unset configuration with
// the published disclosure layout.
func NewPreprocessor(logger *slog.Logger, config PreprocessorConfig) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.PurchaseColumns) == 0 {
		config.PurchaseColumns = DefaultPurchaseColumns()
	}
	if len(config.RedemptionColumns) == 0 {
		config.RedemptionColumns = DefaultRedemptionColumns()
	}
	if config.ValidityPeriod <= 0 {
		config.ValidityPeriod = domain.ValidityPeriod
	}
	return &Preprocessor{
		logger: logger.With(slog.String("component", "preprocessor")),
		config: config,
	}
}

// Purchases normalizes a raw purchase table. Rows keep their source order.
func (p *Preprocessor) Purchases(ctx context.Context, table RawTable) ([]domain.PurchaseRecord, PreprocessReport, error) {
	idx, err := p.config.PurchaseColumns.Resolve(table.Headers, PurchaseFields)
	if err != nil {
		return nil, PreprocessReport{}, fmt.Errorf("purchase table: %w", err)
	}

	report := PreprocessReport{RowsIn: len(table.Rows)}
	records := make([]domain.PurchaseRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		if isEmptyRow(row) {
			report.EmptyRows++
			continue
		}

		rec := domain.PurchaseRecord{
			PurchaseDate: ParseDate(cell(row, idx[FieldPurchaseDate])),
			Amount:       ParseAmount(cell(row, idx[FieldAmount])),
		}
		name, ok := NormalizeName(cell(row, idx[FieldDonorName]))
		rec.DonorName = name

		report.count(rec.PurchaseDate.Valid, rec.Amount.Valid, ok)
		if rec.PurchaseDate.Valid {
			rec.Year = rec.PurchaseDate.Time.Year()
			rec.Month = int(rec.PurchaseDate.Time.Month())
			rec.ValidityDate = domain.NullDate{Time: rec.PurchaseDate.Time.Add(p.config.ValidityPeriod), Valid: true}
		}
		records = append(records, rec)
	}

	p.log(ctx, "purchases", report, len(records))
	return records, report, nil
}

// Redemptions normalizes a raw redemption table. Rows keep their source order.
func (p *Preprocessor) Redemptions(ctx context.Context, table RawTable) ([]domain.RedemptionRecord, PreprocessReport, error) {
	idx, err := p.config.RedemptionColumns.Resolve(table.Headers, RedemptionFields)
	if err != nil {
		return nil, PreprocessReport{}, fmt.Errorf("redemption table: %w", err)
	}

	report := PreprocessReport{RowsIn: len(table.Rows)}
	records := make([]domain.RedemptionRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		if isEmptyRow(row) {
			report.EmptyRows++
			continue
		}

		rec := domain.RedemptionRecord{
			EncashmentDate: ParseDate(cell(row, idx[FieldEncashmentDate])),
			Amount:         ParseAmount(cell(row, idx[FieldAmount])),
		}
		party, ok := NormalizeName(cell(row, idx[FieldPoliticalParty]))
		rec.PoliticalParty = party

		report.count(rec.EncashmentDate.Valid, rec.Amount.Valid, ok)
		if rec.EncashmentDate.Valid {
			rec.Year = rec.EncashmentDate.Time.Year()
			rec.Month = int(rec.EncashmentDate.Time.Month())
		}
		records = append(records, rec)
	}

	p.log(ctx, "redemptions", report, len(records))
	return records, report, nil
}

func (r *PreprocessReport) count(dateOK, amountOK, nameOK bool) {
	if !dateOK {
		r.InvalidDates++
	}
	if !amountOK {
		r.InvalidAmounts++
	}
	if !nameOK {
		r.InvalidNames++
	}
}

func (p *Preprocessor) log(ctx context.Context, table string, r PreprocessReport, kept int) {
	p.logger.InfoContext(ctx, "table normalized",
		slog.String("table", table),
		slog.Int("rows_in", r.RowsIn),
		slog.Int("rows_kept", kept),
		slog.Int("empty_rows", r.EmptyRows))
	if r.InvalidDates+r.InvalidAmounts+r.InvalidNames > 0 {
		p.logger.DebugContext(ctx, "fields left missing after normalization",
			slog.String("table", table),
			slog.Int("invalid_dates", r.InvalidDates),
			slog.Int("invalid_amounts", r.InvalidAmounts),
			slog.Int("invalid_names", r.InvalidNames))
	}
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func isEmptyRow(row []any) bool {
	for _, c := range row {
		switch v := c.(type) {
		case nil:
		case string:
			if strings.TrimSpace(v) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}
