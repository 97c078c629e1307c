// Package spreadsheet decodes the xlsx workbooks served by the bulk export
// endpoints into records and offers the numeric-aware column sort the
// export methods need. It is deliberately small; anything beyond reading
// the first sheet of an export is out of scope.
package spreadsheet

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Row is one record of an export sheet, keyed by column header.
type Row map[string]string

// Rows decodes the first sheet of a workbook. The first row is the header;
// every following row becomes a record keyed by it. Rows shorter than the
// header are padded with empty strings.
func Rows(workbook []byte) ([]Row, error) {
	file, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return nil, errors.Wrap(err, "[spreadsheet.Rows] opening workbook")
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("[spreadsheet.Rows] workbook has no sheets")
	}
	cells, err := file.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "[spreadsheet.Rows] reading sheet %q", sheet)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(Row, len(header))
		for i, column := range header {
			if i < len(line) {
				row[column] = line[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SortBy orders rows by the named column, descending unless ascending is
// set. Values that parse as numbers compare numerically, everything else
// lexicographically; numbers sort before non-numbers.
func SortBy(rows []Row, column string, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		less := compare(rows[i][column], rows[j][column]) < 0
		if ascending {
			return less
		}
		return compare(rows[j][column], rows[i][column]) < 0
	})
}

// Limit returns at most n rows.
func Limit(rows []Row, n int) []Row {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

func compare(a, b string) int {
	da, aerr := decimal.NewFromString(a)
	db, berr := decimal.NewFromString(b)
	switch {
	case aerr == nil && berr == nil:
		return da.Cmp(db)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	default:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
}
