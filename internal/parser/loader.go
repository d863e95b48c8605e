package parser

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/memo"
)

// Loader reads each path at most once per process and serves later requests
// from memory. Failed loads are retried on the next request.
type Loader struct {
	opt    analysis.Options
	logger *slog.Logger
	cache  *memo.Memo[*analysis.Table]
}

// NewLoader returns a Loader. logger and rec may be nil.
func NewLoader(opt analysis.Options, logger *slog.Logger, rec memo.Recorder) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{opt: opt, logger: logger.With("component", "loader")}
	l.cache = memo.New("tables", l.parse, rec)
	return l
}

// Load returns the table stored at path.
func (l *Loader) Load(ctx context.Context, path string) (*analysis.Table, error) {
	return l.cache.Get(ctx, path)
}

func (l *Loader) parse(_ context.Context, path string) (*analysis.Table, error) {
	start := time.Now()
	t, err := ParseFile(path, l.opt)
	if err != nil {
		l.logger.Warn("load failed", "path", path, "error", err)
		return nil, err
	}
	l.logger.Debug("table loaded", "path", path, "rows", t.NumRows(), "cols", t.NumCols(), "took", time.Since(start))
	return t, nil
}
