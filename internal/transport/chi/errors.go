package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
)

// errorMapping turns a domain sentinel into an HTTP reply. The sentinel's
// own text is the client-facing message; wrapped context stays in logs.
type errorMapping struct {
	sentinel error
	status   int
	code     ErrorCode
}

var errorMappings = []errorMapping{
	{domain.ErrLibraryRequired, http.StatusBadRequest, ErrorCodeValidationFailed},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError},
	{domain.ErrDimensionMismatch, http.StatusBadGateway, ErrorCodeEmbeddingProviderError},
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			s.logger.Warn("request rejected", zap.Int("status", m.status), zap.Error(err))
			writeError(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
