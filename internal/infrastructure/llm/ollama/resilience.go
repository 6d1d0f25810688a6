package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

var (
	classIgnore = resilience.ErrorClassification{}
	classRetry  = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	classRecord = resilience.ErrorClassification{RecordFailure: true}
)

// classifyOllamaError maps a transport failure to retry/breaker behavior.
// Cancellations and client-side request errors are neither retried nor held
// against the service; transient statuses and network faults are both.
func classifyOllamaError(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	var netErr net.Error

	switch {
	case err == nil:
		return classIgnore
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return classIgnore
	case resilience.IsCircuitOpen(err):
		return classRetry
	case errors.As(err, &statusErr):
		if retryableStatus(statusErr.StatusCode) {
			return classRetry
		}
		return classIgnore
	case errors.As(err, &netErr):
		return classRetry
	default:
		return classRecord
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// wrapTemporaryIfNeeded tags retryable failures so upper layers can map
// them to a 503 instead of a generic 500.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyOllamaError(err).Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
