// Package dashboard assembles the full page for a selection: dataset overview,
// column inspection, model comparison and business insights.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/catalog"
	"github.com/KaramelBytes/spendboard/internal/chart"
	"github.com/KaramelBytes/spendboard/internal/insights"
	"github.com/KaramelBytes/spendboard/internal/inspect"
	"github.com/KaramelBytes/spendboard/internal/metrics"
	"github.com/KaramelBytes/spendboard/internal/models"
)

// overviewRows is the number of leading rows shown per overview table.
const overviewRows = 5

// overviewDatasets are summarized at the top of the page.
var overviewDatasets = []string{"Customers", "Sales"}

// Selection is the user's current choice of dataset, column and model. Any
// field may be empty or stale; Render resolves it.
type Selection struct {
	Dataset string `json:"dataset"`
	Column  string `json:"column"`
	Model   string `json:"model"`
}

// DefaultModel is selected when the requested model is unknown.
const DefaultModel = "Linear Regression"

// Overview is the head and shape of one dataset.
type Overview struct {
	Name   string     `json:"name"`
	File   string     `json:"file"`
	Rows   int        `json:"rows"`
	Cols   int        `json:"cols"`
	Header []string   `json:"header"`
	Head   [][]string `json:"head"`
}

// Page is everything needed to draw the dashboard once.
type Page struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Selection   Selection `json:"selection"`

	Overview []Overview `json:"overview"`

	Datasets   []string        `json:"datasets"`
	Columns    []string        `json:"columns"`
	Inspection *inspect.Result `json:"inspection,omitempty"`

	Models      []string           `json:"models"`
	Scores      []models.ScoreRow  `json:"scores"`
	ScoreChart  chart.Spec         `json:"score_chart"`
	Explanation models.Explanation `json:"explanation"`

	Insights  []insights.Insight `json:"insights"`
	Takeaways []string           `json:"takeaways"`
}

// FatalError halts a render. Message is the only thing the page shows.
type FatalError struct {
	Message string
	Err     error
}

func (e *FatalError) Error() string { return e.Message }
func (e *FatalError) Unwrap() error { return e.Err }

type userMessager interface{ UserMessage() string }

func fatal(err error) error {
	var um userMessager
	if errors.As(err, &um) {
		return &FatalError{Message: um.UserMessage(), Err: err}
	}
	return &FatalError{Message: "Unexpected error: " + err.Error(), Err: err}
}

// Settings configures a Dashboard.
type Settings struct {
	DataDir  string
	Inspect  inspect.Options
	Insights insights.Options
}

// Dashboard renders pages from a table source and a model registry.
type Dashboard struct {
	src      catalog.Source
	registry *models.Registry
	settings Settings
	logger   *slog.Logger
	metrics  *metrics.Collectors
}

// New returns a Dashboard. logger and m may be nil.
func New(src catalog.Source, registry *models.Registry, s Settings, logger *slog.Logger, m *metrics.Collectors) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{src: src, registry: registry, settings: s, logger: logger.With("component", "dashboard"), metrics: m}
}

// Settings returns the dashboard settings.
func (d *Dashboard) Settings() Settings { return d.settings }

// Registry returns the model registry.
func (d *Dashboard) Registry() *models.Registry { return d.registry }

// Catalog loads every dataset. Load failures are returned as *FatalError.
func (d *Dashboard) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	c, err := catalog.Load(ctx, d.src, d.settings.DataDir)
	if err != nil {
		return nil, fatal(err)
	}
	return c, nil
}

// Render builds the page for sel. Any missing or unreadable input file or
// model artifact stops the render with a *FatalError; absent optional columns
// only drop the charts that need them.
func (d *Dashboard) Render(ctx context.Context, sel Selection) (*Page, error) {
	start := time.Now()
	p, err := d.render(ctx, sel)
	d.metrics.ObserveRender(time.Since(start), err)
	if err != nil {
		d.logger.Error("render halted", "error", err)
		return nil, err
	}
	d.logger.Debug("rendered", "page", p.ID, "dataset", p.Selection.Dataset, "column", p.Selection.Column,
		"model", p.Selection.Model, "took", time.Since(start))
	return p, nil
}

func (d *Dashboard) render(ctx context.Context, sel Selection) (*Page, error) {
	cat, err := d.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	p := &Page{ID: uuid.NewString(), GeneratedAt: time.Now().UTC(), Datasets: cat.Names()}

	for _, name := range overviewDatasets {
		p.Overview = append(p.Overview, overview(cat, name))
	}

	res := cat.Resolve(catalog.Selection{Dataset: sel.Dataset, Column: sel.Column})
	p.Selection = Selection{Dataset: res.Dataset, Column: res.Column}
	tbl := cat.MustGet(res.Dataset)
	p.Columns = tbl.ColumnNames()
	if res.Column != "" {
		ins, err := inspect.Inspect(tbl, res.Column, d.settings.Inspect)
		if err != nil {
			return nil, fatal(err)
		}
		p.Inspection = &ins
	}

	for _, def := range models.Definitions {
		p.Models = append(p.Models, def.Name)
	}
	p.Scores = models.Scores()
	p.ScoreChart = models.ScoreChart()

	// every artifact must load, not only the selected one
	for _, def := range models.Definitions {
		if _, err := d.registry.Load(ctx, def.Key); err != nil {
			return nil, fatal(err)
		}
	}
	def, err := models.Lookup(sel.Model)
	if err != nil {
		def, _ = models.Lookup(DefaultModel)
	}
	p.Selection.Model = def.Name
	customers := cat.MustGet("Customers")
	p.Explanation, err = d.registry.Explain(ctx, def.Key, customers)
	if err != nil {
		return nil, fatal(err)
	}

	p.Insights = insights.Build(customers, cat.MustGet("Sales"), cat.MustGet("Promotion Sales"), d.settings.Insights)
	p.Takeaways = insights.Takeaways()
	return p, nil
}

func overview(cat *catalog.Catalog, name string) Overview {
	e, _ := cat.Lookup(name)
	t := e.Table
	return Overview{
		Name:   e.Name,
		File:   e.File,
		Rows:   t.NumRows(),
		Cols:   t.NumCols(),
		Header: t.ColumnNames(),
		Head:   t.Head(overviewRows),
	}
}

// Dataset returns the full summary report of one dataset.
func (d *Dashboard) Dataset(ctx context.Context, name string, sampleRows int) (*analysis.Report, error) {
	cat, err := d.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	e, err := cat.Lookup(name)
	if err != nil {
		return nil, err
	}
	return analysis.NewReport(e.Table, sampleRows), nil
}

// Column inspects one column of a dataset.
func (d *Dashboard) Column(ctx context.Context, dataset, column string) (inspect.Result, error) {
	cat, err := d.Catalog(ctx)
	if err != nil {
		return inspect.Result{}, err
	}
	e, err := cat.Lookup(dataset)
	if err != nil {
		return inspect.Result{}, err
	}
	return inspect.Inspect(e.Table, column, d.settings.Inspect)
}

// Explain returns the named model's weights aligned against Customers.
func (d *Dashboard) Explain(ctx context.Context, model string) (models.Explanation, error) {
	if _, err := models.Lookup(model); err != nil {
		return models.Explanation{}, err
	}
	cat, err := d.Catalog(ctx)
	if err != nil {
		return models.Explanation{}, err
	}
	ex, err := d.registry.Explain(ctx, model, cat.MustGet("Customers"))
	if err != nil {
		return models.Explanation{}, fatal(err)
	}
	return ex, nil
}

// Insights returns the insights that apply to the loaded data.
func (d *Dashboard) Insights(ctx context.Context) ([]insights.Insight, error) {
	cat, err := d.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return insights.Build(cat.MustGet("Customers"), cat.MustGet("Sales"), cat.MustGet("Promotion Sales"), d.settings.Insights), nil
}
