package chi

import (
	"time"

	"github.com/kailas-cloud/lexiscope/internal/domain/analytics"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
	domusage "github.com/kailas-cloud/lexiscope/internal/domain/usage"
	"github.com/kailas-cloud/lexiscope/internal/usecase/query"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeNotFound          = "not_found"
	codeNotImplemented    = "not_implemented"
	codeQuotaExceeded     = "quota_exceeded"
	codeIndexBuildFailed  = "index_build_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeCompletion        = "completion_unavailable"
	codeInternal          = "internal_error"
)

type caseResponse struct {
	ID       string  `json:"id"`
	FileName string  `json:"file_name"`
	Source   string  `json:"source"`
	Title    string  `json:"title"`
	Judges   string  `json:"judges"`
	Date     string  `json:"date"`
	Summary  string  `json:"summary"`
	Status   string  `json:"status"`
	Score    float64 `json:"score,omitempty"`
	Snippet  string  `json:"snippet,omitempty"`
}

func caseToResponse(r *metadata.Record) caseResponse {
	return caseResponse{
		ID:       r.Identity(),
		FileName: r.Identity() + ".txt",
		Source:   r.SourcePath(),
		Title:    r.Title(),
		Judges:   r.Judges(),
		Date:     r.DecisionDate(),
		Summary:  r.Summary(),
		Status:   string(r.Status()),
	}
}

func casesToResponse(recs []metadata.Record) []caseResponse {
	out := make([]caseResponse, len(recs))
	for i := range recs {
		out[i] = caseToResponse(&recs[i])
	}
	return out
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResponse struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []caseResponse `json:"results"`
}

func queryToResponse(resp query.Response) queryResponse {
	out := queryResponse{
		Query:        resp.Query,
		TotalResults: resp.Total,
		Results:      make([]caseResponse, len(resp.Results)),
	}
	for i := range resp.Results {
		c := caseToResponse(&resp.Results[i].Metadata)
		c.Score = resp.Results[i].Score
		c.Snippet = resp.Results[i].Snippet
		out.Results[i] = c
	}
	return out
}

type chatInitRequest struct {
	CaseID string `json:"case_id"`
	Build  bool   `json:"build"`
}

type chatInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	CaseID  string `json:"case_id"`
	Built   bool   `json:"built"`
}

type chatQueryRequest struct {
	CaseID   string `json:"case_id"`
	Question string `json:"question"`
}

type chatQueryResponse struct {
	CaseID   string `json:"case_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type casesPageResponse struct {
	Cases   []caseResponse `json:"cases"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	HasMore bool           `json:"has_more"`
}

type caseListResponse struct {
	Query   string         `json:"query,omitempty"`
	Judge   string         `json:"judge,omitempty"`
	Results []caseResponse `json:"results"`
	Total   int            `json:"total"`
}

type popularQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type analyticsResponse struct {
	PeriodDays      int            `json:"period_days"`
	TotalSearches   int            `json:"total_searches"`
	UniqueQueries   int            `json:"unique_queries"`
	AvgResponseMS   float64        `json:"avg_response_time_ms"`
	AvgResultsCount float64        `json:"avg_results_count"`
	PopularQueries  []popularQuery `json:"popular_queries"`
}

func analyticsToResponse(s analytics.Summary) analyticsResponse {
	out := analyticsResponse{
		PeriodDays:      s.PeriodDays,
		TotalSearches:   s.TotalSearches,
		UniqueQueries:   s.UniqueQueries,
		AvgResponseMS:   s.AvgLatencyMS,
		AvgResultsCount: s.AvgResultCount,
		PopularQueries:  make([]popularQuery, len(s.Popular)),
	}
	for i, p := range s.Popular {
		out.PopularQueries[i] = popularQuery{Query: p.Query, Count: p.Count}
	}
	return out
}

type rateStatusResponse struct {
	CountInWindow   int  `json:"count_in_window"`
	Capacity        int  `json:"capacity"`
	Remaining       int  `json:"remaining"`
	RateLimitActive bool `json:"rate_limit_active"`
}

type indexStatusResponse struct {
	Status           string   `json:"status"`
	IndexesAvailable int      `json:"indexes_available"`
	TotalSizeMB      float64  `json:"total_size_mb"`
	SampleCases      []string `json:"sample_cases"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type bannerResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Status  string `json:"status"`
}

type usageBudget struct {
	Limit     int64  `json:"tokens_limit"`
	Remaining int64  `json:"tokens_remaining"`
	Exhausted bool   `json:"is_exhausted"`
	ResetsAt  string `json:"resets_at"`
}

type usageReport struct {
	Role        string      `json:"role"`
	Period      string      `json:"period"`
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	TokensUsed  int64       `json:"tokens_used"`
	Budget      usageBudget `json:"budget"`
}

type usageResponse struct {
	Reports []usageReport `json:"reports"`
}

func millisToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func usageToResponse(reports []domusage.Report) usageResponse {
	out := usageResponse{Reports: make([]usageReport, len(reports))}
	for i := range reports {
		r := &reports[i]
		b := r.Budget()
		out.Reports[i] = usageReport{
			Role:        r.Role(),
			Period:      string(r.Period()),
			PeriodStart: millisToISO(r.PeriodStart()),
			PeriodEnd:   millisToISO(r.PeriodEnd()),
			TokensUsed:  r.TokensUsed(),
			Budget: usageBudget{
				Limit:     b.Limit(),
				Remaining: b.Remaining(),
				Exhausted: b.Exhausted(),
				ResetsAt:  millisToISO(b.ResetsAt()),
			},
		}
	}
	return out
}
