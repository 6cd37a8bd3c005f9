package replicates

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"repsig/domain/core"
	"repsig/domain/replicate"
)

// DefaultMarker opens every replicate table header.
const DefaultMarker = "AMA"

// Unflatten joins the blank-line separated tables of a replicate file into
// one delimited table. A leading replicate_group field carries the 1-based
// index of the table each data line came from. Only the first header is
// kept; later headers must match it and only mark table boundaries.
func Unflatten(lines []string, marker string) ([]string, error) {
	var out []string
	var header string
	group := 0

	for i, line := range lines {
		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, marker) {
			group++
			if group == 1 {
				header = strings.TrimSpace(line)
				out = append(out, replicate.GroupColumn+","+line)
			} else if strings.TrimSpace(line) != header {
				return nil, fmt.Errorf("%w: line %d", core.ErrSchemaDrift, i+1)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if group == 0 {
			return nil, fmt.Errorf("%w: line %d", core.ErrOrphanRow, i+1)
		}
		out = append(out, strconv.Itoa(group)+","+line)
	}

	if group == 0 {
		return nil, core.ErrEmptyInput
	}
	return out, nil
}

// ReadLines splits r into lines without their terminators
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read replicate input: %w", err)
	}
	return lines, nil
}

// Parse reads a replicate file and returns its unflattened, typed table
func Parse(r io.Reader, marker string) (*replicate.Table, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}

	flat, err := Unflatten(lines, marker)
	if err != nil {
		return nil, err
	}

	return parseFlat(flat)
}

// parseFlat turns unflattened lines into typed rows. Short records are padded
// with empty cells; records longer than the header are rejected.
func parseFlat(flat []string) (*replicate.Table, error) {
	reader := csv.NewReader(strings.NewReader(strings.Join(flat, "\n")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrFormat, err)
	}

	headers := make([]string, len(records[0]))
	seen := make(map[string]bool, len(headers))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrFormat, h)
		}
		seen[h] = true
		headers[i] = h
	}

	table := &replicate.Table{Columns: headers}
	for i, record := range records[1:] {
		if len(record) > len(headers) {
			return nil, fmt.Errorf("%w: record %d has %d fields, header has %d",
				core.ErrFormat, i+1, len(record), len(headers))
		}
		row := make(replicate.Row, len(headers))
		for j, h := range headers {
			cell := ""
			if j < len(record) {
				cell = record[j]
			}
			row[h] = replicate.ParseValue(cell)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
