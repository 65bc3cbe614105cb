package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is the machine-readable error code returned to clients.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest         ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized       ErrorResponseCode = "unauthorized"
	ErrorResponseCodeEmptyPrompt        ErrorResponseCode = "empty_prompt"
	ErrorResponseCodeValidationFailed   ErrorResponseCode = "validation_failed"
	ErrorResponseCodeEmptyText          ErrorResponseCode = "empty_text"
	ErrorResponseCodeClassification     ErrorResponseCode = "classification_failed"
	ErrorResponseCodeModelUnavailable   ErrorResponseCode = "model_unavailable"
	ErrorResponseCodeRateLimited        ErrorResponseCode = "rate_limited"
	ErrorResponseCodeInvalidEmailDomain ErrorResponseCode = "invalid_email_domain"
	ErrorResponseCodeInvalidCode        ErrorResponseCode = "invalid_code"
	ErrorResponseCodeNotImplemented     ErrorResponseCode = "not_implemented"
	ErrorResponseCodeUpstreamError      ErrorResponseCode = "upstream_error"
	ErrorResponseCodeInternalError      ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Prompt     string `json:"prompt"`
	MaxResults *int   `json:"max_results,omitempty"`
}

// ContributingFeature is one explained token.
type ContributingFeature struct {
	Token             string  `json:"token"`
	ContributionScore float64 `json:"contribution_score"`
	Tfidf             float64 `json:"tfidf"`
}

// ResultItem is one scored document.
type ResultItem struct {
	Url                     string                `json:"url"`
	Title                   string                `json:"title"`
	Snippet                 string                `json:"snippet"`
	SourceDomain            string                `json:"source_domain"`
	PublishDate             *string               `json:"publish_date,omitempty"`
	RecencyDays             *int                  `json:"recency_days"`
	Prediction              string                `json:"prediction"`
	TrustScore              float64               `json:"trust_score"`
	TrustBand               string                `json:"trust_band"`
	ScoreKind               string                `json:"score_kind"`
	TopContributingFeatures []ContributingFeature `json:"top_contributing_features"`
	ExplanationMode         string                `json:"explanation_mode"`
	Cluster                 *int                  `json:"cluster,omitempty"`
	Coord2d                 *[2]float64           `json:"coord_2d,omitempty"`
}

// SearchResponse is the pipeline response.
type SearchResponse struct {
	Prompt  string       `json:"prompt"`
	Results []ResultItem `json:"results"`
	Answer  *string      `json:"answer,omitempty"`
	Report  *string      `json:"report,omitempty"`
}

// SendCodeRequest is the body of POST /auth/send-code.
type SendCodeRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest is the body of POST /auth/verify-code.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyCodeResponse reports a successful verification.
type VerifyCodeResponse struct {
	Verified bool `json:"verified"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// KeywordSearchParams are the query parameters of GET /keyword-search.
type KeywordSearchParams struct {
	Query      string `form:"query" json:"query"`
	MaxResults *int   `form:"max_results,omitempty" json:"max_results,omitempty"`
}

// ScrapeParams are the query parameters of GET /scrape.
type ScrapeParams struct {
	Url string `form:"url" json:"url"`
}

// ServerInterface lists every HTTP operation.
type ServerInterface interface {
	// (POST /api/v1/search)
	Search(w http.ResponseWriter, r *http.Request)
	// (GET /keyword-search)
	KeywordSearch(w http.ResponseWriter, r *http.Request, params KeywordSearchParams)
	// (GET /scrape)
	Scrape(w http.ResponseWriter, r *http.Request, params ScrapeParams)
	// (POST /auth/send-code)
	SendCode(w http.ResponseWriter, r *http.Request)
	// (POST /auth/verify-code)
	VerifyCode(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = defaultParamErrorHandler
	}
	w := &wrapper{handler: si, middlewares: options.Middlewares, errorHandler: options.ErrorHandlerFunc}

	r.Group(func(r chi.Router) {
		r.Post("/api/v1/search", w.search)
		r.Get("/keyword-search", w.keywordSearch)
		r.Get("/scrape", w.scrape)
		r.Post("/auth/send-code", w.sendCode)
		r.Post("/auth/verify-code", w.verifyCode)
		r.Get("/health", w.healthCheck)
		r.Get("/metrics", w.metrics)
	})
	return r
}

type wrapper struct {
	handler      ServerInterface
	middlewares  []func(http.Handler) http.Handler
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (s *wrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, mw := range s.middlewares {
		handler = mw(handler)
	}
	handler.ServeHTTP(w, r)
}

func (s *wrapper) search(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.handler.Search)
}

func (s *wrapper) keywordSearch(w http.ResponseWriter, r *http.Request) {
	var params KeywordSearchParams

	if err := runtime.BindQueryParameter("form", true, true, "query", r.URL.Query(), &params.Query); err != nil {
		s.errorHandler(w, r, &InvalidParamFormatError{ParamName: "query", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "max_results", r.URL.Query(), &params.MaxResults); err != nil {
		s.errorHandler(w, r, &InvalidParamFormatError{ParamName: "max_results", Err: err})
		return
	}

	s.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		s.handler.KeywordSearch(w, r, params)
	})
}

func (s *wrapper) scrape(w http.ResponseWriter, r *http.Request) {
	var params ScrapeParams

	if err := runtime.BindQueryParameter("form", true, true, "url", r.URL.Query(), &params.Url); err != nil {
		s.errorHandler(w, r, &InvalidParamFormatError{ParamName: "url", Err: err})
		return
	}

	s.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		s.handler.Scrape(w, r, params)
	})
}

func (s *wrapper) sendCode(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.handler.SendCode)
}

func (s *wrapper) verifyCode(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.handler.VerifyCode)
}

func (s *wrapper) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.handler.HealthCheck)
}

func (s *wrapper) metrics(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.handler.Metrics)
}

func defaultParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    ErrorResponseCodeBadRequest,
		Message: err.Error(),
	})
}
