// Package sheet turns exported spreadsheet data into model rows.
package sheet

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one spreadsheet row keyed by column header.
type Record map[string]any

const emptyHeader = "__EMPTY"

// DecodeRecords reads a JSON array of records, the format written by common
// sheet-to-JSON exporters.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records json: %w", err)
	}
	return records, nil
}

// ReadCSV reads every CSV row as a slice of cells.
func ReadCSV(r io.Reader) ([][]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]any
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		row := make([]any, len(line))
		for i, cell := range line {
			row[i] = cell
		}
		grid = append(grid, row)
	}
	return grid, nil
}

// RecordsFromGrid keys each row after the first by the first row's headers.
// Blank headers become __EMPTY, __EMPTY_1, ... and repeated headers get a
// numeric suffix. Rows with no values are dropped.
func RecordsFromGrid(grid [][]any) []Record {
	if len(grid) == 0 {
		return nil
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := headerKeys(grid[0], width)

	records := make([]Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		record := Record{}
		for i, cell := range row {
			if isBlank(cell) {
				continue
			}
			record[headers[i]] = cell
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	return records
}

func headerKeys(header []any, width int) []string {
	keys := make([]string, width)
	used := make(map[string]int)
	for i := 0; i < width; i++ {
		base := emptyHeader
		if i < len(header) && !isBlank(header[i]) {
			base = strings.TrimSpace(fmt.Sprint(header[i]))
		}
		key := base
		if n, ok := used[base]; ok {
			key = base + "_" + strconv.Itoa(n)
		}
		used[base]++
		keys[i] = key
	}
	return keys
}

func isBlank(cell any) bool {
	switch c := cell.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(c) == ""
	}
	return false
}
