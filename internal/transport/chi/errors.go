package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
	sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeBadRequest),
	sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, codeNotImplemented),
	sentinelHandler(domain.ErrQuotaExceeded, http.StatusPaymentRequired, codeQuotaExceeded),
	sentinelHandler(domain.ErrBuild, http.StatusServiceUnavailable, codeIndexBuildFailed),
	sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	sentinelHandler(domain.ErrCompletionTimeout, http.StatusServiceUnavailable, codeCompletion),
	sentinelHandler(domain.ErrCompletionService, http.StatusServiceUnavailable, codeCompletion),
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel message only.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
