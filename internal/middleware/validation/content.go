package validation

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ContentError is a rejected request body
type ContentError struct {
	Status  int
	Message string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// ValidateContent checks Content-Length and Content-Type of a body request.
// An empty body needs no Content-Type.
func ValidateContent(r *http.Request, config *Config) *ContentError {
	if r.ContentLength > config.MaxBodySize {
		return &ContentError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("Request body too large, limit is %d bytes", config.MaxBodySize),
		}
	}

	if r.ContentLength == 0 {
		return nil
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return &ContentError{Status: http.StatusUnsupportedMediaType, Message: "Content-Type header is required"}
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return &ContentError{Status: http.StatusBadRequest, Message: "Malformed Content-Type header"}
	}

	for _, allowed := range config.ContentTypes {
		if strings.EqualFold(mediaType, allowed) {
			return nil
		}
	}

	return &ContentError{
		Status:  http.StatusUnsupportedMediaType,
		Message: fmt.Sprintf("Unsupported Content-Type, expected %s", strings.Join(config.ContentTypes, " or ")),
	}
}
