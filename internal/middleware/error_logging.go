package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/utils"
)

// PanicInfo describes a recovered panic
type PanicInfo struct {
	Value     interface{}
	Stack     string
	RequestID string
	Method    string
	Path      string
	ClientIP  string
	Timestamp time.Time
}

func newPanicInfo(w http.ResponseWriter, r *http.Request, recovered interface{}, stack []byte) *PanicInfo {
	return &PanicInfo{
		Value:     recovered,
		Stack:     string(stack),
		RequestID: w.Header().Get(RequestIDHeader),
		Method:    r.Method,
		Path:      r.URL.Path,
		ClientIP:  utils.GetClientIP(r),
		Timestamp: time.Now(),
	}
}

// logPanic writes the panic to the server log only; the stack is added when
// the config asks for it
func logPanic(r *http.Request, info *PanicInfo, config *apperrors.ErrorConfig) {
	event := zerolog.Ctx(r.Context()).Error().
		Str("type", "panic").
		Str("request_id", info.RequestID).
		Str("method", info.Method).
		Str("path", info.Path).
		Str("client_ip", info.ClientIP).
		Time("timestamp", info.Timestamp).
		Interface("panic_value", info.Value)

	if config.IncludeStackTrace {
		event = event.Str("stack_trace", info.Stack)
	}

	event.Msg("Server panic recovered")
}
