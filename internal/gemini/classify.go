package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"causaltrace/internal/llm"
)

// classifyError maps a provider error onto an llm error category.
func classifyError(err error) *llm.Error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &llm.Error{Category: llm.CategoryTimeout, Message: "request timed out: " + err.Error()}
	case errors.Is(err, context.Canceled):
		return &llm.Error{Category: llm.CategoryCanceled, Message: "request canceled: " + err.Error()}
	}

	if apiErr, ok := apiError(err); ok {
		return classifyAPIError(apiErr.Code, apiErr.Status, apiErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &llm.Error{Category: llm.CategoryTimeout, Message: err.Error()}
		}
		return &llm.Error{Category: llm.CategoryNetwork, Message: err.Error()}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key not valid") ||
		strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "permission_denied") ||
		strings.Contains(lower, "unauthenticated"):
		return &llm.Error{Category: llm.CategoryAuth, Message: msg}
	case strings.Contains(lower, "quota") ||
		strings.Contains(lower, "resource exhausted") ||
		strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "error 429") ||
		strings.Contains(lower, "rate limit"):
		return &llm.Error{Category: llm.CategoryRateLimit, Message: msg}
	case strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "internal error"):
		return &llm.Error{Category: llm.CategoryServer, Message: msg}
	case strings.Contains(lower, "connection") ||
		strings.Contains(lower, "network") ||
		strings.Contains(lower, "dial") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "unreachable"):
		return &llm.Error{Category: llm.CategoryNetwork, Message: msg}
	case strings.Contains(lower, "timeout"):
		return &llm.Error{Category: llm.CategoryTimeout, Message: msg}
	default:
		return &llm.Error{Category: llm.CategoryUnknown, Message: msg}
	}
}

func classifyAPIError(code int, status, message string) *llm.Error {
	msg := message
	if msg == "" {
		msg = status
	}
	msg = fmt.Sprintf("gemini API error %d: %s", code, msg)
	switch {
	case code == 401 || code == 403:
		return &llm.Error{Category: llm.CategoryAuth, Message: msg}
	case code == 429:
		return &llm.Error{Category: llm.CategoryRateLimit, Message: msg}
	case code == 408 || code == 504:
		return &llm.Error{Category: llm.CategoryTimeout, Message: msg}
	case code >= 500:
		return &llm.Error{Category: llm.CategoryServer, Message: msg}
	case code >= 400:
		return &llm.Error{Category: llm.CategoryInvalidRequest, Message: msg}
	default:
		return &llm.Error{Category: llm.CategoryUnknown, Message: msg}
	}
}
