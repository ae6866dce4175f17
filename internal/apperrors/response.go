package apperrors

// Client facing messages. Internal detail never goes into a response body.
const (
	MessageInternal      = "Internal server error"
	MessageDatabase      = "Database error"
	MessageNotFound      = "Not found"
	MessageInvalidID     = "Invalid ID"
	MessageInvalidJSON   = "Invalid JSON body"
	MessageDuplicateName = "Duplicate resource name"
	MessageResourceGone  = "Resource not found"
)

// SuccessResponse is the envelope of every successful JSON response
type SuccessResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data"`
}

// ErrorResponse is the envelope of every failed JSON response. Validation
// failures fill Errors, everything else fills Error.
type ErrorResponse struct {
	OK     bool         `json:"ok"`
	Error  string       `json:"error,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
	Path   string       `json:"path,omitempty"`
}

// NewErrorResponse builds the body for err as seen by the client
func NewErrorResponse(err *Error) ErrorResponse {
	if err.Kind == KindValidation {
		return ErrorResponse{OK: false, Errors: err.Fields}
	}
	message := err.Message
	if err.Kind == KindInternal && message == "" {
		message = MessageInternal
	}
	return ErrorResponse{OK: false, Error: message}
}
