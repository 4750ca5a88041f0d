package dataprocessing

import (
	"fmt"
	"strings"
)

// Field is a canonical column of a normalized table.
type Field string

const (
	FieldPurchaseDate   Field = "purchase_date"
	FieldDonorName      Field = "donor_name"
	FieldAmount         Field = "amount"
	FieldEncashmentDate Field = "encashment_date"
	FieldPoliticalParty Field = "political_party"
)

// PurchaseFields are the canonical columns a purchase table must provide.
var PurchaseFields = []Field{FieldPurchaseDate, FieldDonorName, FieldAmount}

// RedemptionFields are the canonical columns a redemption table must provide.
var RedemptionFields = []Field{FieldEncashmentDate, FieldPoliticalParty, FieldAmount}

// Known reports whether f is a canonical column of either table.
func (f Field) Known() bool {
	switch f {
	case FieldPurchaseDate, FieldDonorName, FieldAmount, FieldEncashmentDate, FieldPoliticalParty:
		return true
	}
	return false
}

// ColumnMapping maps raw source headers to canonical fields. Headers are
// matched after whitespace collapsing and case folding, so "Date of\nEncashment"
// and "date of encashment" are the same header.
type ColumnMapping map[string]Field

// DefaultPurchaseColumns is the mapping for the published purchase disclosure.
func DefaultPurchaseColumns() ColumnMapping {
	return ColumnMapping{
		"Date of Purchase": FieldPurchaseDate,
		"Purchaser Name":   FieldDonorName,
		"Denomination":     FieldAmount,
	}
}

// DefaultRedemptionColumns is the mapping for the published encashment disclosure.
func DefaultRedemptionColumns() ColumnMapping {
	return ColumnMapping{
		"Date of\nEncashment":         FieldEncashmentDate,
		"Name of the Political Party": FieldPoliticalParty,
		"Denomination":                FieldAmount,
	}
}

// MappingFromStrings builds a ColumnMapping from plain configuration values.
// Canonical names that are not known fields are rejected.
func MappingFromStrings(m map[string]string) (ColumnMapping, error) {
	out := make(ColumnMapping, len(m))
	for raw, canonical := range m {
		f := Field(strings.TrimSpace(canonical))
		if !f.Known() {
			return nil, fmt.Errorf("column %q maps to unknown field %q", raw, canonical)
		}
		out[raw] = f
	}
	return out, nil
}

// Resolve finds the index of every required field among headers.
// Unmapped headers are ignored; a required field without a header fails
// with ErrMissingColumn.
func (m ColumnMapping) Resolve(headers []string, required []Field) (map[Field]int, error) {
	lookup := make(map[string]Field, len(m))
	for raw, f := range m {
		lookup[headerKey(raw)] = f
	}

	idx := make(map[Field]int, len(required))
	for i, h := range headers {
		key := headerKey(h)
		f, ok := lookup[key]
		if !ok {
			// headers already in canonical form map to themselves
			f = Field(key)
		}
		if _, seen := idx[f]; !seen {
			idx[f] = i
		}
	}

	var missing []string
	for _, f := range required {
		if _, ok := idx[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// Matches reports whether any header in row is mapped by m or is already
// a canonical field name.
func (m ColumnMapping) Matches(row []string) bool {
	mapped := make(map[string]bool, len(m))
	for raw := range m {
		mapped[headerKey(raw)] = true
	}
	for _, cell := range row {
		key := headerKey(cell)
		if mapped[key] || Field(key).Known() {
			return true
		}
	}
	return false
}

func headerKey(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
