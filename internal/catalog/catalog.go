// Package catalog holds the fixed set of datasets shown on the dashboard.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

// ErrUnknownDataset is returned by Lookup for names outside the catalog.
var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset is a logical dataset name bound to its input file.
type Dataset struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	File string `json:"file"`
}

// Datasets is the catalog in display order.
var Datasets = []Dataset{
	{Name: "Customers", Key: "customers", File: "customers.xls"},
	{Name: "Sales", Key: "sales", File: "sales_header.xls"},
	{Name: "Products", Key: "products", File: "products.xls"},
	{Name: "Stores", Key: "stores", File: "stores.xls"},
	{Name: "Promotion Sales", Key: "promotion_sales", File: "product_promotion_sales.xls"},
}

// loadOrder is the order failures are reported in.
var loadOrder = []string{"Customers", "Products", "Stores", "Sales", "Promotion Sales"}

// Source loads a table from a path. parser.Loader implements it.
type Source interface {
	Load(ctx context.Context, path string) (*analysis.Table, error)
}

// Entry is one loaded dataset.
type Entry struct {
	Dataset
	Table *analysis.Table
}

// Catalog maps dataset names to loaded tables. It is read-only once built.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Load reads every dataset under dataDir. Files are read concurrently; if any
// fail, the error of the first dataset in load order is returned unchanged.
func Load(ctx context.Context, src Source, dataDir string) (*Catalog, error) {
	tables := make([]*analysis.Table, len(Datasets))
	errs := make([]error, len(Datasets))
	var g errgroup.Group
	for i, d := range Datasets {
		g.Go(func() error {
			tables[i], errs[i] = src.Load(ctx, filepath.Join(dataDir, d.File))
			return nil
		})
	}
	_ = g.Wait()

	for _, name := range loadOrder {
		i := indexOf(name)
		if errs[i] != nil {
			return nil, errs[i]
		}
	}
	entries := make([]Entry, len(Datasets))
	for i, d := range Datasets {
		entries[i] = Entry{Dataset: d, Table: tables[i]}
	}
	return New(entries...), nil
}

// New builds a catalog from already loaded entries.
func New(entries ...Entry) *Catalog {
	c := &Catalog{entries: entries, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		c.index[e.Name] = i
	}
	return c
}

func indexOf(name string) int {
	for i, d := range Datasets {
		if d.Name == name {
			return i
		}
	}
	panic("catalog: no dataset " + name)
}

// Names returns dataset names in display order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns all entries in display order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get returns the table for an exact dataset name.
func (c *Catalog) Get(name string) (*analysis.Table, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Table, true
}

// MustGet returns the table for name and panics if the name is not in the
// catalog. Names come from the fixed set, never from user input.
func (c *Catalog) MustGet(name string) *analysis.Table {
	t, ok := c.Get(name)
	if !ok {
		panic(fmt.Sprintf("catalog: unknown dataset %q", name))
	}
	return t
}

// Lookup resolves an externally supplied name or key, case-insensitively.
func (c *Catalog) Lookup(name string) (Entry, error) {
	n := strings.TrimSpace(name)
	for _, e := range c.entries {
		if strings.EqualFold(e.Name, n) || strings.EqualFold(e.Key, n) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
}

// Selection is the dataset and column currently inspected.
type Selection struct {
	Dataset string `json:"dataset"`
	Column  string `json:"column"`
}

// Resolve maps a possibly stale selection onto the catalog. An unknown dataset
// falls back to the first one; a column the table lacks falls back to the
// table's first column (empty when the table has none).
func (c *Catalog) Resolve(sel Selection) Selection {
	if len(c.entries) == 0 {
		return Selection{}
	}
	e, err := c.Lookup(sel.Dataset)
	if err != nil {
		e = c.entries[0]
	}
	out := Selection{Dataset: e.Name, Column: sel.Column}
	if e.Table == nil || !e.Table.HasColumn(out.Column) {
		out.Column = ""
		if e.Table != nil && e.Table.NumCols() > 0 {
			out.Column = e.Table.Columns[0].Name
		}
	}
	return out
}
