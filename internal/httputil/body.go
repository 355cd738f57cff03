package httputil

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
)

// IsBodyTooLarge reports whether err means the request body, or the multipart
// form parsed from it, exceeded its limit.
func IsBodyTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "request body too large") || strings.Contains(msg, "message too large")
}
