// Package chi serves the lexiscope HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	domusage "github.com/kailas-cloud/lexiscope/internal/domain/usage"
	"github.com/kailas-cloud/lexiscope/internal/metrics"
	healthuc "github.com/kailas-cloud/lexiscope/internal/usecase/health"
	"github.com/kailas-cloud/lexiscope/internal/version"
)

const (
	serviceName     = "Lexiscope Legal Search API"
	maxBodyBytes    = 1 << 20
	indexSampleSize = 10
)

// Services are the use cases behind the API.
type Services struct {
	Query   searcher
	Chat    chatter
	Catalog caseCatalog
	Rate    rateReporter
	Indexes indexReporter
	Health  healthChecker
	Usage   usageReporter
}

// Server holds the HTTP handlers.
type Server struct {
	svc    Services
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	return &Server{svc: svc, logger: logger}
}

// RouterOptions configure the middleware stack.
type RouterOptions struct {
	APIKeys        []string
	AllowedOrigins []string
}

// Router mounts every route behind the middleware stack.
func (s *Server) Router(opts RouterOptions) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chimw.RequestID)
	r.Use(WideEvent(s.logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/", s.Banner)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/index_status", s.IndexStatus)
	r.Get("/api/rate-status", s.RateStatus)
	r.Get("/api/usage", s.Usage)

	r.Get("/cases", s.ListCases)
	r.Get("/cases/by-judge/{judge}", s.CasesByJudge)
	r.Get("/cases/{id}", s.GetCase)
	r.Get("/search/database", s.SearchDatabase)
	r.Get("/analytics/search", s.SearchAnalytics)

	r.Post("/query", s.Query)
	r.Post("/chat_init", s.ChatInit)
	r.Post("/chat_query", s.ChatQuery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// Banner handles GET /.
func (s *Server) Banner(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, bannerResponse{
		Service: serviceName,
		Version: version.Version,
		Commit:  version.Commit,
		Status:  "running",
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// IndexStatus handles GET /index_status.
func (s *Server) IndexStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Indexes.Stats(indexSampleSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	samples := st.Samples
	if samples == nil {
		samples = []string{}
	}
	writeJSON(w, http.StatusOK, indexStatusResponse{
		Status:           "ok",
		IndexesAvailable: st.Count,
		TotalSizeMB:      float64(st.SizeBytes*100/(1<<20)) / 100,
		SampleCases:      samples,
	})
}

// RateStatus handles GET /api/rate-status.
func (s *Server) RateStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.svc.Rate.Status()
	writeJSON(w, http.StatusOK, rateStatusResponse{
		CountInWindow:   st.CountInWindow,
		Capacity:        st.Capacity,
		Remaining:       st.Remaining,
		RateLimitActive: st.Active,
	})
}

// Usage handles GET /api/usage.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.svc.Usage.Reports(r.Context(), period)))
}

// ListCases handles GET /cases.
func (s *Server) ListCases(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	page, err := s.svc.Catalog.List(r.Context(), limit, offset)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, casesPageResponse{
		Cases:   casesToResponse(page.Cases),
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	})
}

// GetCase handles GET /cases/{id}.
func (s *Server) GetCase(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Catalog.Case(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caseToResponse(&rec))
}

// CasesByJudge handles GET /cases/by-judge/{judge}.
func (s *Server) CasesByJudge(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	judge := pathParam(r, "judge")
	recs, err := s.svc.Catalog.ByJudge(r.Context(), judge, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caseListResponse{Judge: judge, Results: casesToResponse(recs), Total: len(recs)})
}

// SearchDatabase handles GET /search/database.
func (s *Server) SearchDatabase(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	q := r.URL.Query().Get("q")
	recs, err := s.svc.Catalog.Search(r.Context(), q, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caseListResponse{Query: q, Results: casesToResponse(recs), Total: len(recs)})
}

// SearchAnalytics handles GET /analytics/search.
func (s *Server) SearchAnalytics(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Catalog.Analytics(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyticsToResponse(sum))
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.svc.Query.Search(ctx, req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, queryToResponse(resp))
}

// ChatInit handles POST /chat_init.
func (s *Server) ChatInit(w http.ResponseWriter, r *http.Request) {
	var req chatInitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ready, err := s.svc.Chat.EnsureReady(r.Context(), req.CaseID, req.Build)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	msg := "Chat initialized with existing index"
	if ready.Built {
		msg = "Chat initialized with a newly built index"
	}
	writeJSON(w, http.StatusOK, chatInitResponse{
		Status:  ready.Status,
		Message: msg,
		CaseID:  ready.Identity,
		Built:   ready.Built,
	})
}

// ChatQuery handles POST /chat_query.
func (s *Server) ChatQuery(w http.ResponseWriter, r *http.Request) {
	var req chatQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caseID := strings.TrimSpace(req.CaseID)
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "question cannot be empty")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.svc.Chat.Answer(ctx, caseID, question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeader(w, usage)
	writeJSON(w, http.StatusOK, chatQueryResponse{CaseID: caseID, Question: question, Answer: answer})
}

func setUsageHeader(w http.ResponseWriter, u *domain.EmbeddingUsage) {
	if u.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(u.TotalTokens))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// intParam reads an optional integer query parameter; absent means zero.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, domain.ErrInvalidInput)
	}
	return n, nil
}

func pathParam(r *http.Request, name string) string {
	v := gochi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
