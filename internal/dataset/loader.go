package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var missingMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
}

// Load reads a customer table from a .csv (or other delimited text) file or
// from the first sheet of an .xlsx workbook. Every required column must be
// present in the header.
func Load(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err := readXLSXRows(path)
		if err != nil {
			return nil, &DataLoadError{Path: path, Err: err}
		}
		return FromRows(path, rows)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &DataLoadError{Path: path, Err: err}
		}
		return Parse(path, bytes.NewReader(data))
	}
}

// Parse reads a delimited table. The delimiter is sniffed from the header
// line among ',', ';' and tab; name is only used in error messages.
func Parse(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataLoadError{Path: name, Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &DataLoadError{Path: name, Err: err}
	}
	return FromRows(name, rows)
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	best, bestCount := ',', bytes.Count(header, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// FromRows builds a table from a header row followed by data rows
func FromRows(source string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, &DataLoadError{Path: source, Err: errors.New("empty table: no header row")}
	}

	index := make(map[Column]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[Column(name)]; !dup {
			index[Column(name)] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &DataLoadError{Path: source, Column: col, Err: errors.New("required column missing")}
		}
	}
	var optional []Column
	for _, col := range OptionalColumns {
		if _, ok := index[col]; ok {
			optional = append(optional, col)
		}
	}

	records := make([]CustomerRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec, err := parseRecord(row, index)
		if err != nil {
			err.Path = source
			err.Line = i + 2
			return nil, err
		}
		records = append(records, rec)
	}

	return NewTable(records, optional...), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRecord(row []string, index map[Column]int) (CustomerRecord, *DataLoadError) {
	cell := func(col Column) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec CustomerRecord
	cluster, err := parseClusterID(cell(ColCluster))
	if err != nil {
		return rec, &DataLoadError{Column: ColCluster, Err: err}
	}
	rec.ClusterID = cluster

	numbers := []struct {
		col   Column
		dst   *float64
		bound numberBound
	}{
		{ColAnnualIncome, &rec.AnnualIncome, nonNegative},
		{ColSpendingScore, &rec.SpendingScore, finite},
		{ColAverageOrderValue, &rec.AverageOrderValue, nonNegative},
		{ColNumberOfOrders, &rec.NumberOfOrders, nonNegative},
		{ColReviewScore, &rec.ReviewScore, finite},
		{ColAge, &rec.Age, positive},
	}
	for _, n := range numbers {
		v, err := parseNumber(cell(n.col), n.bound)
		if err != nil {
			return rec, &DataLoadError{Column: n.col, Err: err}
		}
		*n.dst = v
	}

	rec.DeviceUsed = category(cell(ColDeviceUsed))
	rec.PreferredPaymentMethod = category(cell(ColPaymentMethod))
	rec.ProductCategory = category(cell(ColProductCategory))
	rec.CustomerRegion = category(cell(ColCustomerRegion))
	rec.Gender = category(cell(ColGender))
	rec.PreferredDeliveryOption = category(cell(ColPreferredDeliveryOption))
	rec.AgeGroup = category(cell(ColAgeGroup))
	return rec, nil
}

func parseClusterID(s string) (int, error) {
	if missingMarkers[strings.ToLower(s)] {
		return 0, errors.New("cluster id is required")
	}
	if id, err := strconv.Atoi(s); err == nil {
		if id < 0 {
			return 0, fmt.Errorf("negative cluster id %d", id)
		}
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid cluster id %q", s)
	}
	return int(f), nil
}

// numberBound is the range a numeric column accepts; every bound excludes
// Inf and NaN spelled out as numbers
type numberBound int

const (
	finite numberBound = iota
	nonNegative
	positive
)

// parseNumber returns NaN for a missing cell
func parseNumber(s string, bound numberBound) (float64, error) {
	if missingMarkers[strings.ToLower(s)] {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	switch {
	case bound == nonNegative && v < 0:
		return 0, fmt.Errorf("negative value %q", s)
	case bound == positive && v <= 0:
		return 0, fmt.Errorf("value %q must be positive", s)
	}
	return v, nil
}

func category(s string) string {
	if missingMarkers[strings.ToLower(s)] {
		return ""
	}
	return s
}
