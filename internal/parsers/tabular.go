package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"skyline/opsboard/internal/constants"
)

func readCSV(raw []byte, spec kindSpec) ([]fields, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	table, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf(constants.MsgMalformedCSV, err)
	}
	return readTable(table, spec)
}

// readXLSX reads the first worksheet with the header on row 1.
func readXLSX(raw []byte, spec kindSpec) ([]fields, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf(constants.MsgMalformedXLSX, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(constants.MsgEmptyPayload)
	}
	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf(constants.MsgMalformedXLSX, err)
	}
	return readTable(table, spec)
}

// readTable maps a header row plus data rows onto canonical fields. Row
// numbers count data rows from 1; blank rows keep their number but are
// dropped.
func readTable(table [][]string, spec kindSpec) ([]fields, error) {
	if len(table) == 0 || isEmptyRow(table[0]) {
		return nil, errors.New(constants.MsgEmptyPayload)
	}

	columns := map[string]int{}
	for i, h := range table[0] {
		field, ok := spec.headers[fieldKey(h)]
		if !ok {
			continue
		}
		if _, dup := columns[field]; !dup {
			columns[field] = i
		}
	}

	var missing []string
	for _, req := range spec.required {
		if _, ok := columns[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf(constants.MsgMissingHeaders, strings.Join(missing, ", "))
	}

	rows := make([]fields, 0, len(table)-1)
	for i, cells := range table[1:] {
		if isEmptyRow(cells) {
			continue
		}
		values := make(map[string]string, len(columns))
		for field, pos := range columns {
			if pos < len(cells) {
				values[field] = cells[pos]
			}
		}
		rows = append(rows, fields{row: i + 1, values: values})
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
