package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/catalog"
	"github.com/KaramelBytes/spendboard/internal/dashboard"
	"github.com/KaramelBytes/spendboard/internal/inspect"
	"github.com/KaramelBytes/spendboard/internal/models"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type datasetInfo struct {
	catalog.Dataset
	Rows    int      `json:"rows"`
	Cols    int      `json:"cols"`
	Columns []string `json:"columns"`
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/datasets", s.apiDatasets)
	r.Get("/datasets/{name}", s.apiDataset)
	r.Get("/datasets/{name}/columns/{column}", s.apiColumn)
	r.Get("/models", s.apiModels)
	r.Get("/models/scores", s.apiScores)
	r.Get("/models/{model}/explain", s.apiExplain)
	r.Get("/insights", s.apiInsights)
	r.Get("/page", s.apiPage)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownDataset),
		errors.Is(err, models.ErrUnknownModel),
		errors.Is(err, inspect.ErrUnknownColumn):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	var fe *dashboard.FatalError
	if errors.As(err, &fe) {
		msg = fe.Message
	}
	if code >= 500 {
		s.logger.Error("api request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, code)
	render.JSON(w, r, errorResponse{Error: msg, RequestID: RequestIDFrom(r.Context())})
}

func (s *Server) apiDatasets(w http.ResponseWriter, r *http.Request) {
	cat, err := s.dash.Catalog(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	var out []datasetInfo
	for _, e := range cat.Entries() {
		out = append(out, datasetInfo{Dataset: e.Dataset, Rows: e.Table.NumRows(), Cols: e.Table.NumCols(), Columns: e.Table.ColumnNames()})
	}
	render.JSON(w, r, out)
}

func (s *Server) apiDataset(w http.ResponseWriter, r *http.Request) {
	sample := 5
	if v := r.URL.Query().Get("sample"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			sample = n
		}
	}
	rep, err := s.dash.Dataset(r.Context(), chi.URLParam(r, "name"), sample)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	render.JSON(w, r, struct {
		Name    string             `json:"name"`
		Rows    int                `json:"rows"`
		Columns []analysis.Summary `json:"columns"`
		Header  []string           `json:"header"`
		Sample  [][]string         `json:"sample"`
	}{rep.Name, rep.Rows, rep.Cols, rep.Header, rep.Samples})
}

func (s *Server) apiColumn(w http.ResponseWriter, r *http.Request) {
	res, err := s.dash.Column(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "column"))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

func (s *Server) apiModels(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, models.Definitions)
}

func (s *Server) apiScores(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, models.Scores())
}

func (s *Server) apiExplain(w http.ResponseWriter, r *http.Request) {
	ex, err := s.dash.Explain(r.Context(), chi.URLParam(r, "model"))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	render.JSON(w, r, ex)
}

func (s *Server) apiInsights(w http.ResponseWriter, r *http.Request) {
	list, err := s.dash.Insights(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// apiPage renders the whole page for the query selection without touching the
// session.
func (s *Server) apiPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.dash.Render(r.Context(), dashboard.Selection{
		Dataset: q.Get("dataset"), Column: q.Get("column"), Model: q.Get("model"),
	})
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}
