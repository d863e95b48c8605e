package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/spendboard/internal/catalog"
	"github.com/KaramelBytes/spendboard/internal/dashboard"
	"github.com/KaramelBytes/spendboard/internal/fixtures"
	"github.com/KaramelBytes/spendboard/internal/models"
)

// resetFlags clears values and Changed state that persist across invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns stdout and the error.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is execCmd that fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setup isolates HOME and writes the fixture inputs. It returns the path flags.
func setup(t *testing.T) (dataDir, modelsDir string, paths []string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dataDir, modelsDir, err := fixtures.Write(filepath.Join(home, "work"))
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	return dataDir, modelsDir, []string{"--data-dir", dataDir, "--models-dir", modelsDir}
}

func TestCLI_Datasets(t *testing.T) {
	_, _, paths := setup(t)
	out := runCmd(t, append([]string{"datasets"}, paths...)...)
	for _, want := range []string{
		"- Customers (customers.xls): 6 rows, 5 columns",
		"- Sales (sales_header.xls): 6 rows, 4 columns",
		"- Stores (stores.xls): 3 rows, 3 columns",
		"- Promotion Sales (product_promotion_sales.xls): 3 rows, 4 columns",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCLI_InspectDatasetAndColumn(t *testing.T) {
	_, _, paths := setup(t)
	out := runCmd(t, append([]string{"inspect", "customers"}, paths...)...)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 6", "Columns: 5", "[HEAD AND SAMPLE ROWS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dataset summary missing %q:\n%s", want, out)
		}
	}

	out = runCmd(t, append([]string{"inspect", "customers", "annual_spend"}, paths...)...)
	if !strings.Contains(out, "annual_spend: numeric (count 6)") || !strings.Contains(out, "Distribution of annual_spend") {
		t.Fatalf("numeric column output:\n%s", out)
	}
	if !strings.Contains(out, "| range | count |") {
		t.Fatalf("expected histogram table:\n%s", out)
	}

	out = runCmd(t, append([]string{"inspect", "Sales", "store_id"}, paths...)...)
	if !strings.Contains(out, "Top Categories in store_id") || !strings.Contains(out, "| S01 | 3 |") {
		t.Fatalf("categorical column output:\n%s", out)
	}
}

func TestCLI_InspectUnknownDataset(t *testing.T) {
	_, _, paths := setup(t)
	_, err := execCmd(t, append([]string{"inspect", "returns"}, paths...)...)
	if !errors.Is(err, catalog.ErrUnknownDataset) {
		t.Fatalf("err = %v, want ErrUnknownDataset", err)
	}
}

func TestCLI_ModelsScoresAndExplain(t *testing.T) {
	_, _, paths := setup(t)
	out := runCmd(t, "models", "scores")
	if !strings.Contains(out, "| Gradient Boosting | 0.84 | 245.7 |") {
		t.Fatalf("scores table:\n%s", out)
	}

	out = runCmd(t, append([]string{"models", "explain", "random_forest", "--json"}, paths...)...)
	var ex models.Explanation
	if err := json.Unmarshal([]byte(out), &ex); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if ex.Model != "Random Forest" || ex.Alignment != models.AlignPositional {
		t.Fatalf("explanation = %+v", ex)
	}
	if len(ex.Weights) != 3 || ex.Weights[0].Feature != "annual_spend" || ex.Weights[2].Feature != "age" {
		t.Fatalf("weights = %+v", ex.Weights)
	}

	out = runCmd(t, append([]string{"models", "explain", "Linear Regression"}, paths...)...)
	if !strings.Contains(out, "| Feature | Impact |") || !strings.Contains(out, "Feature alignment: positional") {
		t.Fatalf("linear explain:\n%s", out)
	}

	if _, err := execCmd(t, append([]string{"models", "explain", "svm"}, paths...)...); !errors.Is(err, models.ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestCLI_ModelsListReportsBrokenArtifact(t *testing.T) {
	_, modelsDir, paths := setup(t)
	out := runCmd(t, append([]string{"models", "list"}, paths...)...)
	if strings.Count(out, ": ok") != 3 {
		t.Fatalf("expected three loadable models:\n%s", out)
	}

	if err := os.Remove(filepath.Join(modelsDir, "gb_model.json")); err != nil {
		t.Fatal(err)
	}
	out, err := execCmd(t, append([]string{"models", "list"}, paths...)...)
	if err == nil {
		t.Fatalf("expected failure with a missing artifact")
	}
	if !strings.Contains(out, "- Gradient Boosting [gradient_boosting, tree_ensemble]") || !strings.Contains(out, "✗") {
		t.Fatalf("list output:\n%s", out)
	}
}

func TestCLI_Insights(t *testing.T) {
	_, _, paths := setup(t)
	out := runCmd(t, append([]string{"insights"}, paths...)...)
	for _, want := range []string{"Volume by Store", "## Business Takeaways", "Ensemble models outperform linear approaches"} {
		if !strings.Contains(out, want) {
			t.Fatalf("insights missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ReportMarkdownToFile(t *testing.T) {
	dataDir, _, paths := setup(t)
	outPath := filepath.Join(filepath.Dir(dataDir), "reports", "page.md")
	out := runCmd(t, append([]string{"report", "-o", outPath, "--model", "gradient_boosting"}, paths...)...)
	if !strings.Contains(out, "✓ Wrote report to "+outPath) {
		t.Fatalf("stdout = %q", out)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(b)
	for _, want := range []string{"# Customer Spend Intelligence", "Model Insights: Gradient Boosting", "Business Takeaways"} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestCLI_ReportJSONSelection(t *testing.T) {
	_, _, paths := setup(t)
	out := runCmd(t, append([]string{"report", "--format", "json", "--dataset", "sales", "--column", "nope"}, paths...)...)
	var page dashboard.Page
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := dashboard.Selection{Dataset: "Sales", Column: "sale_id", Model: "Linear Regression"}
	if page.Selection != want {
		t.Fatalf("selection = %+v, want %+v", page.Selection, want)
	}

	if _, err := execCmd(t, append([]string{"report", "--format", "xml"}, paths...)...); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestCLI_ReportMissingFileIsFatal(t *testing.T) {
	dataDir, _, paths := setup(t)
	missing := filepath.Join(dataDir, "stores.xls")
	if err := os.Remove(missing); err != nil {
		t.Fatal(err)
	}
	_, err := execCmd(t, append([]string{"report"}, paths...)...)
	var fe *dashboard.FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *dashboard.FatalError", err)
	}
	if fe.Message != "File not found: "+missing {
		t.Fatalf("message = %q", fe.Message)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out := runCmd(t, "config", "set", "top_n", "25")
	if !strings.Contains(out, "✓ Saved config") {
		t.Fatalf("set output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".spendboard", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	out = runCmd(t, "config", "show")
	if !strings.Contains(out, "top_n: 25") || !strings.Contains(out, "session_secret: (not set)") {
		t.Fatalf("show output:\n%s", out)
	}

	if _, err := execCmd(t, "config", "set", "colour", "blue"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := execCmd(t, "config", "set", "log_level", "loud"); err == nil {
		t.Fatalf("expected validation error")
	}
}
