// Package exporter writes analysis tables to CSV and formats rupee amounts
// for display.
//
// CSVWriter is the low-level writer: headers, optional UTF-8 BOM for Excel,
// appends and row streaming. TableExporter builds on it to write the donor,
// league, party and timeline tables and the normalized record sets.
//
// FormatINR, AmountInWords and SpellINR render amounts in the Indian
// numbering system (lakh and crore).
package exporter
