package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insightflow/domain/core"
	"insightflow/domain/dataset"
	"insightflow/internal"
	"insightflow/internal/config"
	"insightflow/internal/engine"
	"insightflow/internal/errors"
	"insightflow/internal/report"
	"insightflow/ports"
)

// maxBodyBytes caps request bodies before JSON parsing
const maxBodyBytes = 64 << 20

var logger = internal.NewDefaultLogger("API")

// Server exposes an Analyzer over HTTP
type Server struct {
	router   *chi.Mux
	analyzer ports.Analyzer
	cfg      config.ServerConfig
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewServer creates the router and registers all routes
func NewServer(analyzer ports.Analyzer, cfg config.ServerConfig) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		analyzer: analyzer,
		cfg:      cfg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured port
func (s *Server) ListenAndServe() error {
	addr := ":" + s.cfg.Port
	logger.Info("listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/datasets", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/relations", s.handleRelations)
			r.Get("/neighbors", s.handleNeighbors)
			r.Post("/explain", s.handleExplain)
			r.Post("/recommend", s.handleRecommend)
			r.Get("/report", s.handleReport)
			r.Post("/report", s.handleReport)
			r.Delete("/", s.handleDelete)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ds, err := parseDataset(body, s.cfg.MaxUploadRows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.analyzer.Create(r.Context(), ds)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{"id": id, "rows": ds.Len(), "fields": ds.Catalog.Fields()})
}

func (s *Server) handleRelations(w http.ResponseWriter, r *http.Request) {
	rel, err := s.analyzer.Relations(r.Context(), engineID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, rel)
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := dataset.Dimension
	if k := q.Get("kind"); k != "" {
		parsed, err := dataset.ParseAnalyticType(k)
		if err != nil {
			s.fail(w, r, errors.WithCode(errors.CodeInvalidInput, err))
			return
		}
		kind = parsed
	}
	k, err := queryInt(q.Get("k"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	threshold, err := queryFloat(q.Get("threshold"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ids, err := s.analyzer.Neighbors(r.Context(), engineID(r), kind, splitList(q.Get("seeds")), k, threshold)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	render.JSON(w, r, map[string]any{"neighbors": ids})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := parseExplain(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.analyzer.Explain(r.Context(), engineID(r), req)
	requests.WithLabelValues("explain", outcome(err)).Inc()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	insightsReturned.Observe(float64(len(res.Insights)))
	render.JSON(w, r, res)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	views, err := parseViews(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.analyzer.Recommend(r.Context(), engineID(r), views)
	requests.WithLabelValues("recommend", outcome(err)).Inc()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// handleReport renders relations plus, when measures are given, the explain
// result. GET takes dimensions and measures from the query string.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req engine.ExplainRequest
	if r.Method == http.MethodPost {
		body, err := readBody(w, r)
		if err == nil {
			req, err = parseExplain(body)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
	} else {
		q := r.URL.Query()
		req.Dimensions = splitList(q.Get("dimensions"))
		for _, m := range splitList(q.Get("measures")) {
			key, op, _ := strings.Cut(m, ":")
			measure, err := newMeasure(key, op)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			req.Measures = append(req.Measures, measure)
		}
	}

	id := engineID(r)
	doc := report.Document{Title: "Insight report " + id.String()}
	rel, err := s.analyzer.Relations(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc.Relations = rel
	if len(req.Measures) > 0 {
		res, err := s.analyzer.Explain(r.Context(), id, req)
		requests.WithLabelValues("report", outcome(err)).Inc()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		doc.Request = &req
		doc.Result = res
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(doc))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.analyzer.Delete(r.Context(), engineID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail writes the error envelope with the status mapped from its code
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.Classify(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Debug("%s %s rejected with %s: %v", r.Method, r.URL.Path, code, err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error(), Code: code})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeConfiguration, errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func engineID(r *http.Request) core.EngineID {
	return core.EngineID(chi.URLParam(r, "id"))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return body, nil
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.InvalidInput("k must be an integer")
	}
	return v, nil
}

func queryFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.InvalidInput("threshold must be a number")
	}
	return v, nil
}
