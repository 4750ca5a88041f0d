// Package dataprocessing cleans and aggregates electoral bond disclosures.
// It turns the published purchase and encashment sheets into normalized
// records and derives every table the dashboard shows from them.
//
// # Architecture
//
// The package is organized in layers, leaves first:
//
// 1. Normalizer: ParseDate, ParseAmount and NormalizeName clean one field each
// 2. Preprocessor: maps source headers to canonical columns and builds records
// 3. Aggregation: AggregateDonors, BuildLeague and RedemptionsByParty
// 4. Statistics: ComputeGlobalStats, ComputeDonorStats and ComputePartyStats
// 5. Correlation: Correlate matches a donor's validity window to encashments
//
// Loader is the only part that touches the filesystem. Everything else is a
// pure function over in-memory records and is safe to call concurrently.
//
// # Data Flow
//
//	xlsx/csv → Loader → RawTable → Preprocessor → records → aggregates, stats, tables
//
// # Error Handling
//
// A field that fails to parse becomes missing on its record and never aborts
// a run. Aggregates over nothing fail explicitly:
//
//   - ErrEmptyInput when a ratio or distribution has no rows
//   - ErrEmptyRange when a year range has no dated rows
//   - ErrNotFound when a donor has no total
//
// # Missing Dates
//
// A record whose date did not parse has Year and Month set to zero and
// HasDate returning false. Such records still count toward row counts and
// totals but are left out of year ranges, validity windows, timelines and
// heatmaps.
package dataprocessing
