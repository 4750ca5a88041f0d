package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	apperrors "bondscope/internal/errors"
)

// TableSource names a file and, for workbooks, the sheet to read.
// An empty Sheet means the first sheet whose rows carry a mapped header.
type TableSource struct {
	Path    string
	Sheet   string
	Columns ColumnMapping
}

// Loader reads raw disclosure tables from .xlsx and .csv files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// LoadTable reads one table. The header row is the first row containing a
// header known to the source's column mapping, so title rows above the
// table are skipped.
func (l *Loader) LoadTable(ctx context.Context, src TableSource) (RawTable, error) {
	if err := ctx.Err(); err != nil {
		return RawTable{}, err
	}

	var (
		rows  [][]string
		value cellFunc
		err   error
	)
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".xlsx", ".xlsm":
		rows, value, err = l.readWorkbook(ctx, src)
	case ".csv":
		rows, err = readCSV(src.Path)
	default:
		return RawTable{}, apperrors.NewParsingError(
			fmt.Sprintf("unsupported table format %q", filepath.Ext(src.Path)), nil).
			WithContext("path", src.Path)
	}
	if err != nil {
		return RawTable{}, err
	}

	table := toRawTable(rows, src.Columns, value)
	l.logger.InfoContext(ctx, "table loaded",
		slog.String("path", src.Path),
		slog.Int("columns", len(table.Headers)),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// LoadDataset reads the purchase and redemption tables concurrently.
func (l *Loader) LoadDataset(ctx context.Context, purchases, redemptions TableSource) (RawTable, RawTable, error) {
	var p, r RawTable
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := l.LoadTable(gctx, purchases)
		if err != nil {
			return fmt.Errorf("load purchases: %w", err)
		}
		p = t
		return nil
	})
	g.Go(func() error {
		t, err := l.LoadTable(gctx, redemptions)
		if err != nil {
			return fmt.Errorf("load redemptions: %w", err)
		}
		r = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return RawTable{}, RawTable{}, err
	}
	return p, r, nil
}

// readWorkbook returns raw cell values so that number formats do not hide
// dates or amounts. Numbers in date-formatted cells become time.Time.
func (l *Loader) readWorkbook(ctx context.Context, src TableSource) ([][]string, cellFunc, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, nil, apperrors.NewStorageError("open workbook", err).WithContext("path", src.Path)
	}
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	sheet := src.Sheet
	var rows [][]string
	if sheet != "" {
		rows, err = f.GetRows(sheet, raw)
		if err != nil {
			return nil, nil, apperrors.NewParsingError("read sheet", err).
				WithContext("path", src.Path).
				WithContext("sheet", sheet)
		}
	} else {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", src.Path)
		}
		for _, name := range sheets {
			r, err := f.GetRows(name, raw)
			if err != nil || headerRow(r, src.Columns) < 0 {
				continue
			}
			l.logger.DebugContext(ctx, "found disclosure sheet",
				slog.String("path", src.Path),
				slog.String("sheet", name))
			sheet, rows = name, r
			break
		}
		if sheet == "" {
			// nothing matched; the preprocessor reports which columns are missing
			sheet = sheets[0]
			if rows, err = f.GetRows(sheet, raw); err != nil {
				return nil, nil, apperrors.NewParsingError("read sheet", err).
					WithContext("path", src.Path).
					WithContext("sheet", sheet)
			}
		}
	}

	dates := newDateCells(f, sheet)
	// styles are resolved now, while the workbook is open
	values := make(map[[2]int]any)
	for r, row := range rows {
		for c, v := range row {
			if t, ok := dates.value(r, c, v); ok {
				values[[2]int{r, c}] = t
			}
		}
	}
	return rows, func(r, c int, v string) any {
		if t, ok := values[[2]int{r, c}]; ok {
			return t
		}
		return v
	}, nil
}

// cellFunc converts the text of the cell at row r, column c into the value
// handed to the preprocessor.
type cellFunc func(r, c int, v string) any

// dateCells recognizes serial numbers stored in date-formatted cells.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	d := &dateCells{f: f, sheet: sheet, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCells) value(r, c int, v string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	cell, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return time.Time{}, false
	}
	idx, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil || !d.isDateStyle(idx) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d *dateCells) isDateStyle(idx int) bool {
	if ok, seen := d.styles[idx]; seen {
		return ok
	}
	ok := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		ok = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	d.styles[idx] = ok
	return ok
}

// isDateFormat reports whether a built-in number format ID or a custom
// format code displays a calendar date.
func isDateFormat(id int, custom *string) bool {
	if custom != nil {
		code := strings.ToLower(stripFormatLiterals(*custom))
		return strings.ContainsAny(code, "dy")
	}
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		// East Asian date formats
		return true
	}
	return false
}

// stripFormatLiterals drops quoted text, bracketed sections and escaped
// characters from a number format code.
func stripFormatLiterals(code string) string {
	var b strings.Builder
	quoted, bracket, escaped := false, false, false
	for _, ch := range code {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = ch != '"'
		case bracket:
			bracket = ch != ']'
		case ch == '\\':
			escaped = true
		case ch == '"':
			quoted = true
		case ch == '[':
			bracket = true
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open csv", err).WithContext("path", path)
	}
	defer file.Close()
	return parseCSV(file, path)
}

func parseCSV(r io.Reader, path string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("read csv", err).WithContext("path", path)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func headerRow(rows [][]string, mapping ColumnMapping) int {
	for i, row := range rows {
		if mapping.Matches(row) {
			return i
		}
	}
	return -1
}

func toRawTable(rows [][]string, mapping ColumnMapping, value cellFunc) RawTable {
	h := headerRow(rows, mapping)
	if h < 0 {
		h = 0
	}
	if len(rows) == 0 {
		return RawTable{}
	}

	table := RawTable{
		Headers: rows[h],
		Rows:    make([][]any, 0, len(rows)-h-1),
	}
	for r := h + 1; r < len(rows); r++ {
		row := rows[r]
		cells := make([]any, len(row))
		for i, c := range row {
			if value != nil {
				cells[i] = value(r, i, c)
			} else {
				cells[i] = c
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}
