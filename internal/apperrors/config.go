package apperrors

// ErrorConfig tunes the panic recovery middleware
type ErrorConfig struct {
	IncludeStackTrace bool     // add the goroutine stack to the panic log line
	IncludeHeaders    []string // headers kept on the response after a panic
	InternalMessage   string   // body message for recovered panics
}

// DefaultErrorConfig returns the production settings: the panic value is
// logged, the stack is not
func DefaultErrorConfig() *ErrorConfig {
	return &ErrorConfig{
		IncludeStackTrace: false,
		IncludeHeaders:    []string{"X-Request-Id", "X-Ratelimit-Remaining"},
		InternalMessage:   MessageInternal,
	}
}

// DevelopmentErrorConfig also logs the stack. The response body is the same
// as in production and never carries a trace.
func DevelopmentErrorConfig() *ErrorConfig {
	config := DefaultErrorConfig()
	config.IncludeStackTrace = true
	return config
}
