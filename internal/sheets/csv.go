package sheets

import (
	"strings"

	"swingtube/internal/core"
)

// ParseCSV converts the text of a published sheet into records.
//
// The format is deliberately naive: lines are split on "\n" or "\r\n",
// blank lines are dropped and cells are split on every comma with no
// quote or escape handling. The first line names the columns. A row with
// fewer cells than the header gets empty strings for the missing trailing
// columns; cells past the header width are dropped. Text with fewer than
// two non-blank lines yields no records.
func ParseCSV(text string) []core.Record {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
	}
	return ZipRows(rows)
}

// ZipRows maps each row after the first onto the column names of the
// first, positionally. It needs a header and at least one data row.
func ZipRows(rows [][]string) []core.Record {
	if len(rows) < 2 {
		return []core.Record{}
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	out := make([]core.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			fields[h] = safeGet(row, i)
		}
		out = append(out, core.NewRecord(fields))
	}
	return out
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
