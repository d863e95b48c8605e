package analysis

import (
	"fmt"
	"strings"
)

// Report is a markdown-friendly overview of a tabular dataset.
type Report struct {
	Name    string
	Rows    int
	Cols    []Summary
	Header  []string
	Samples [][]string
}

// NewReport summarizes every column of t and keeps up to sampleRows leading rows.
func NewReport(t *Table, sampleRows int) *Report {
	if sampleRows < 0 {
		sampleRows = 5
	}
	rep := &Report{Name: t.Name, Rows: t.NumRows(), Header: t.ColumnNames(), Samples: t.Head(sampleRows)}
	for _, c := range t.Columns {
		rep.Cols = append(rep.Cols, Describe(c))
	}
	return rep
}

// Markdown renders a compact report suitable for a terminal or a standalone doc.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString("- ")
		b.WriteString(SummaryLine(c))
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		writeMarkdownTable(&b, r.Header, r.Samples)
	}
	return b.String()
}

// SummaryLine renders a one-line description of a column summary.
func SummaryLine(s Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %s (count %d)", safeName(s.Column), s.Kind, s.Count))
	switch s.Kind {
	case KindNumeric:
		if s.Count == 0 {
			b.WriteString(" — no values")
			break
		}
		b.WriteString(fmt.Sprintf(" — mean %s, std %s, min %s, 25%% %s, 50%% %s, 75%% %s, max %s",
			fmtNum(s.Mean), fmtNum(s.Std), fmtNum(s.Min), fmtNum(s.Q25), fmtNum(s.Q50), fmtNum(s.Q75), fmtNum(s.Max)))
	case KindCategorical:
		b.WriteString(fmt.Sprintf(" — unique %d", s.Unique))
		if s.Top != nil && s.Freq != nil {
			b.WriteString(fmt.Sprintf(", top %s (%d)", safeVal(*s.Top), *s.Freq))
		}
	}
	return b.String()
}

// TopValuesMarkdown renders value counts as a two-column table.
func TopValuesMarkdown(counts []CategoryCount) string {
	var b strings.Builder
	rows := make([][]string, len(counts))
	for i, kv := range counts {
		rows[i] = []string{kv.Value, fmt.Sprintf("%d", kv.Count)}
	}
	writeMarkdownTable(&b, []string{"value", "count"}, rows)
	return b.String()
}

// HistogramMarkdown renders histogram bins as a two-column table.
func HistogramMarkdown(bins []Bin) string {
	var b strings.Builder
	rows := make([][]string, len(bins))
	for i, bin := range bins {
		rows[i] = []string{BinLabel(bin), fmt.Sprintf("%d", bin.Count)}
	}
	writeMarkdownTable(&b, []string{"range", "count"}, rows)
	return b.String()
}

// BinLabel formats a bin range as "lo–hi".
func BinLabel(bin Bin) string {
	return fmt.Sprintf("%.4g–%.4g", bin.Lo, bin.Hi)
}

// MarkdownTable renders rows under header as a pipe table.
func MarkdownTable(header []string, rows [][]string) string {
	var b strings.Builder
	writeMarkdownTable(&b, header, rows)
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(h))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func fmtNum(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.4g", *v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
