// Package server exposes the dashboard over HTTP: the HTML page, standalone
// chart frames and a JSON API.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/spendboard/internal/dashboard"
	"github.com/KaramelBytes/spendboard/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionName = "spendboard"

// Server serves one Dashboard.
type Server struct {
	dash    *dashboard.Dashboard
	store   sessions.Store
	logger  *slog.Logger
	metrics *metrics.Collectors
	tmpl    *template.Template
	router  chi.Router
}

// NewSessionStore returns a cookie store keyed by secret. An empty secret
// generates a per-process key, so selections do not survive a restart.
func NewSessionStore(secret string) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode}
	return store
}

// New builds the router. logger and m may be nil.
func New(d *dashboard.Dashboard, store sessions.Store, logger *slog.Logger, m *metrics.Collectors) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"query": func(kv ...string) string {
			v := url.Values{}
			for i := 0; i+1 < len(kv); i += 2 {
				v.Set(kv[i], kv[i+1])
			}
			return v.Encode()
		},
		"pathEscape": url.PathEscape,
		"fmtFloat":   func(f float64) string { return trimFloat(f) },
		"fmtPtr":     fmtPtr,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{dash: d, store: store, logger: logger.With("component", "server"), metrics: m, tmpl: tmpl}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", s.handlePage)
		r.Route("/charts", func(r chi.Router) {
			r.Get("/column", s.handleColumnChart)
			r.Get("/scores", s.handleScoreChart)
			r.Get("/models/{model}", s.handleModelChart)
			r.Get("/insights/{key}", s.handleInsightChart)
		})
		r.Route("/api", s.apiRoutes)
	})
	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel := s.selection(r)
	page, err := s.dash.Render(r.Context(), sel)
	if err != nil {
		s.renderFatal(w, err)
		return
	}
	s.saveSelection(w, r, page.Selection)

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "page", page); err != nil {
		s.logger.Error("template failed", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderFatal(w http.ResponseWriter, err error) {
	msg := err.Error()
	var fe *dashboard.FatalError
	if errors.As(err, &fe) {
		msg = fe.Message
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if terr := s.tmpl.ExecuteTemplate(w, "fatal", msg); terr != nil {
		s.logger.Error("template failed", "error", terr)
	}
}

// selection merges query parameters over the selection kept in the session.
func (s *Server) selection(r *http.Request) dashboard.Selection {
	var sel dashboard.Selection
	if sess, err := s.store.Get(r, sessionName); err == nil {
		sel.Dataset, _ = sess.Values["dataset"].(string)
		sel.Column, _ = sess.Values["column"].(string)
		sel.Model, _ = sess.Values["model"].(string)
	}
	q := r.URL.Query()
	if v := q.Get("dataset"); v != "" {
		sel.Dataset = v
	}
	if v := q.Get("column"); v != "" {
		sel.Column = v
	}
	if v := q.Get("model"); v != "" {
		sel.Model = v
	}
	return sel
}

func (s *Server) saveSelection(w http.ResponseWriter, r *http.Request, sel dashboard.Selection) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil && sess == nil {
		return
	}
	sess.Values["dataset"] = sel.Dataset
	sess.Values["column"] = sel.Column
	sess.Values["model"] = sel.Model
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("session save failed", "error", err)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, h, logger)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
