package dashboard

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/chart"
)

// Markdown renders the page as a standalone document. Charts are written as
// their underlying data tables.
func (p *Page) Markdown() string {
	var b strings.Builder
	b.WriteString("# Customer Spend Intelligence\n\n")
	fmt.Fprintf(&b, "Report %s, generated %s\n\n", p.ID, p.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Dataset Overview\n\n")
	for _, o := range p.Overview {
		fmt.Fprintf(&b, "### %s\n\nRows: %d, Columns: %d\n\n", o.Name, o.Rows, o.Cols)
		b.WriteString(analysis.MarkdownTable(o.Header, o.Head))
		b.WriteString("\n")
	}

	b.WriteString("## Column-Level Insights\n\n")
	fmt.Fprintf(&b, "Dataset: %s\n\n", p.Selection.Dataset)
	if p.Inspection == nil {
		b.WriteString("No columns to inspect.\n\n")
	} else {
		fmt.Fprintf(&b, "### Column Summary\n\n- %s\n\n", analysis.SummaryLine(p.Inspection.Summary))
		writeChart(&b, p.Inspection.Chart)
	}

	b.WriteString("## Model Performance Comparison\n\n")
	rows := make([][]string, len(p.Scores))
	for i, s := range p.Scores {
		rows[i] = []string{s.Model, fmt.Sprintf("%.2f", s.R2), fmt.Sprintf("%.1f", s.RMSE)}
	}
	b.WriteString(analysis.MarkdownTable([]string{"Model", "R² Score", "RMSE"}, rows))
	b.WriteString("\n")

	ex := p.Explanation
	fmt.Fprintf(&b, "## Model Insights: %s\n\n", ex.Model)
	for _, n := range ex.Notes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	b.WriteString("\n")
	wrows := make([][]string, len(ex.Weights))
	for i, w := range ex.Weights {
		wrows[i] = []string{w.Feature, fmt.Sprintf("%.4g", w.Weight)}
	}
	b.WriteString(analysis.MarkdownTable([]string{"Feature", ex.Label}, wrows))
	fmt.Fprintf(&b, "\nFeature alignment: %s\n", ex.Alignment)
	if len(ex.Missing) > 0 {
		fmt.Fprintf(&b, "Declared features missing from Customers: %s\n", strings.Join(ex.Missing, ", "))
	}
	b.WriteString("\n")

	if len(p.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, in := range p.Insights {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", in.Title, in.Text)
			writeChart(&b, in.Chart)
		}
	}

	b.WriteString("## Business Takeaways\n\n")
	for _, t := range p.Takeaways {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	return b.String()
}

func writeChart(b *strings.Builder, s chart.Spec) {
	if s.Empty() {
		fmt.Fprintf(b, "%s: no data\n\n", s.Title)
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", s.Title)
	rows := make([][]string, len(s.Values))
	for i, v := range s.Values {
		rows[i] = []string{s.Labels[i], fmt.Sprintf("%.4g", v)}
	}
	x := s.XLabel
	if s.Kind == chart.KindHistogram {
		x = "range"
	}
	if x == "" {
		x = "label"
	}
	y := s.YLabel
	if y == "" {
		y = "value"
	}
	b.WriteString(analysis.MarkdownTable([]string{x, y}, rows))
	b.WriteString("\n")
}
