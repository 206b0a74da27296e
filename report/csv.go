// ABOUTME: CSV export of monthly reports
// ABOUTME: Quotes every field and swaps commas in notes for semicolons

package report

import (
	"bufio"
	"io"
	"strings"
)

var csvHeader = []string{"Date", "Company", "Type", "Notes"}

// WriteCSV writes the report's rows. Every field is wrapped in double quotes with
// embedded quotes doubled; commas inside notes become semicolons. Rows end in "\n"
// and the last row has no trailing newline.
func WriteCSV(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	writeRow(bw, csvHeader)
	for _, row := range r.Rows {
		bw.WriteByte('\n')
		writeRow(bw, []string{
			row.Date.Format("2006-01-02"),
			row.CompanyName,
			string(row.Type),
			strings.ReplaceAll(row.Notes, ",", ";"),
		})
	}
	return bw.Flush()
}

func writeRow(bw *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(field, `"`, `""`))
		bw.WriteByte('"')
	}
}
