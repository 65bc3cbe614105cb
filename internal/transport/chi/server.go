package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/logger"
	healthuc "github.com/kailas-cloud/veritas/internal/usecase/health"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	pipeline      Pipeline
	verifier      Verifier
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. verifier may be nil (verification disabled).
func NewServer(pipeline Pipeline, verifier Verifier, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		verifier: verifier,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyPrompt, http.StatusBadRequest, ErrorResponseCodeEmptyPrompt),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeModelUnavailable),
		sentinelHandler(domain.ErrEmptyText, http.StatusUnprocessableEntity, ErrorResponseCodeEmptyText),
		sentinelHandler(domain.ErrClassification, http.StatusInternalServerError, ErrorResponseCodeClassification),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrInvalidEmailDomain, http.StatusBadRequest, ErrorResponseCodeInvalidEmailDomain),
		sentinelHandler(domain.ErrVerificationFailed, http.StatusBadRequest, ErrorResponseCodeInvalidCode),
		sentinelHandler(domain.ErrVerificationDisabled, http.StatusNotImplemented, ErrorResponseCodeNotImplemented),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, ErrorResponseCodeUpstreamError),
	}
	return s
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runPipeline(w, r, req.Prompt, derefInt(req.MaxResults))
}

// KeywordSearch handles GET /keyword-search.
func (s *Server) KeywordSearch(w http.ResponseWriter, r *http.Request, params KeywordSearchParams) {
	s.runPipeline(w, r, params.Query, derefInt(params.MaxResults))
}

func (s *Server) runPipeline(w http.ResponseWriter, r *http.Request, prompt string, maxResults int) {
	resp, err := s.pipeline.Run(r.Context(), prompt, maxResults)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResponseToAPI(resp))
}

// Scrape handles GET /scrape.
func (s *Server) Scrape(w http.ResponseWriter, r *http.Request, params ScrapeParams) {
	it, err := s.pipeline.Inspect(r.Context(), params.Url)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemToAPI(it))
}

// SendCode handles POST /auth/send-code.
func (s *Server) SendCode(w http.ResponseWriter, r *http.Request) {
	if s.verifier == nil {
		s.handleDomainError(w, r, domain.ErrVerificationDisabled)
		return
	}
	var req SendCodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.verifier.SendCode(r.Context(), req.Email); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Code sent successfully"})
}

// VerifyCode handles POST /auth/verify-code.
func (s *Server) VerifyCode(w http.ResponseWriter, r *http.Request) {
	if s.verifier == nil {
		s.handleDomainError(w, r, domain.ErrVerificationDisabled)
		return
	}
	var req VerifyCodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.verifier.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyCodeResponse{Verified: true})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyPrompt,
		domain.ErrInvalidRequest,
		domain.ErrModelUnavailable,
		domain.ErrEmptyText,
		domain.ErrClassification,
		domain.ErrRateLimited,
		domain.ErrInvalidEmailDomain,
		domain.ErrVerificationFailed,
		domain.ErrVerificationDisabled,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
