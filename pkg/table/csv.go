package table

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyImport is returned when an import payload has no usable header.
var ErrEmptyImport = errors.New("import file is empty or has no header row")

// ImportResult aggregates per-row outcomes of a CSV import.
type ImportResult struct {
	Success int `json:"success_count"`
	Errors  int `json:"error_count"`
}

// ExportCSV renders records as CSV text. The header row carries the
// column titles; cell values are resolved the same way sorting resolves
// them, so lookups are applied and missing values become empty strings.
// Every cell is double-quoted with embedded quotes doubled. When keys
// are given, only those columns are exported, in the given order.
func (e *Engine[T]) ExportCSV(records []T, keys ...string) string {
	columns := make([]*Column[T], 0, len(e.Columns))
	if len(keys) == 0 {
		for i := range e.Columns {
			columns = append(columns, &e.Columns[i])
		}
	} else {
		for _, key := range keys {
			if c := e.column(key); c != nil {
				columns = append(columns, c)
			}
		}
	}

	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteCell(c.Title))
	}
	for _, record := range records {
		b.WriteByte('\n')
		for i, c := range columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCell(e.resolve(c, record)))
		}
	}
	return b.String()
}

// ExportFilename names a CSV download after the entity and the current
// date, e.g. "patients_2026-08-31.csv".
func ExportFilename(entity string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", entity, now.Format("2006-01-02"))
}

// Template renders a two-line CSV: the given headers plus one sample row.
func Template(headers, sample []string) string {
	cells := func(row []string) string {
		quoted := make([]string, len(row))
		for i, cell := range row {
			quoted[i] = quoteCell(cell)
		}
		return strings.Join(quoted, ",")
	}
	return cells(headers) + "\n" + cells(sample)
}

// ImportCSV parses text as CSV and submits one record payload per data
// row, sequentially. Header cells are lower-cased with spaces replaced
// by underscores to form field keys; data cells are matched positionally.
// A row that fails to parse or whose submission errors is counted and
// skipped, never aborting the rest of the batch. A missing or empty
// header aborts the whole import with ErrEmptyImport.
func ImportCSV(ctx context.Context, text string, submit func(context.Context, map[string]string) error) (ImportResult, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ImportResult{}, ErrEmptyImport
	}

	header, err := splitLine(lines[0])
	if err != nil {
		return ImportResult{}, ErrEmptyImport
	}
	fields := make([]string, len(header))
	empty := true
	for i, cell := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cell)), " ", "_")
		fields[i] = key
		if key != "" {
			empty = false
		}
	}
	if empty {
		return ImportResult{}, ErrEmptyImport
	}

	var result ImportResult
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells, err := splitLine(line)
		if err != nil {
			result.Errors++
			continue
		}
		payload := make(map[string]string, len(fields))
		for i, key := range fields {
			if key == "" {
				continue
			}
			if i < len(cells) {
				payload[key] = cells[i]
			} else {
				payload[key] = ""
			}
		}
		if err := submit(ctx, payload); err != nil {
			result.Errors++
			continue
		}
		result.Success++
	}
	return result, nil
}

func quoteCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// splitLine splits one CSV line on commas, honoring double-quoted cells
// with doubled quotes as escapes. An unterminated quote is an error.
func splitLine(line string) ([]string, error) {
	var cells []string
	var cell strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case inQuotes && ch == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				cell.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case ch == '"':
			inQuotes = true
		case ch == ',' && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteByte(ch)
		}
	}
	if inQuotes {
		return nil, errors.New("unterminated quoted cell")
	}
	cells = append(cells, cell.String())
	return cells, nil
}
