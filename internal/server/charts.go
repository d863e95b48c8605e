package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/spendboard/internal/chart"
	"github.com/KaramelBytes/spendboard/internal/insights"
	"github.com/KaramelBytes/spendboard/internal/models"
)

func (s *Server) writeChart(w http.ResponseWriter, spec chart.Spec) {
	var buf bytes.Buffer
	err := chart.Render(&buf, spec)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if errors.Is(err, chart.ErrEmpty) {
		_ = s.tmpl.ExecuteTemplate(w, "nodata", spec.Title)
		return
	}
	if err != nil {
		s.logger.Error("chart render failed", "chart", spec.Title, "error", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}
	_, _ = buf.WriteTo(w)
}

func (s *Server) chartError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.renderFatal(w, err)
		return
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) handleColumnChart(w http.ResponseWriter, r *http.Request) {
	sel := s.selection(r)
	cat, err := s.dash.Catalog(r.Context())
	if err != nil {
		s.chartError(w, err)
		return
	}
	res := cat.Resolve(catalogSelection(sel))
	if res.Column == "" {
		s.writeChart(w, chart.Spec{Title: res.Dataset})
		return
	}
	result, err := s.dash.Column(r.Context(), res.Dataset, res.Column)
	if err != nil {
		s.chartError(w, err)
		return
	}
	s.writeChart(w, result.Chart)
}

func (s *Server) handleScoreChart(w http.ResponseWriter, _ *http.Request) {
	s.writeChart(w, models.ScoreChart())
}

func (s *Server) handleModelChart(w http.ResponseWriter, r *http.Request) {
	ex, err := s.dash.Explain(r.Context(), chi.URLParam(r, "model"))
	if err != nil {
		s.chartError(w, err)
		return
	}
	s.writeChart(w, ex.Chart())
}

func (s *Server) handleInsightChart(w http.ResponseWriter, r *http.Request) {
	list, err := s.dash.Insights(r.Context())
	if err != nil {
		s.chartError(w, err)
		return
	}
	in, ok := insights.Find(list, chi.URLParam(r, "key"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.writeChart(w, in.Chart)
}
