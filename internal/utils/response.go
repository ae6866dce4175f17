package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
)

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status_code", status).Msg("response encoding failed")
	}
}

// WriteData writes the success envelope
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, apperrors.SuccessResponse{OK: true, Data: data})
}

// WriteMessage writes {ok:false,error:message}
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, apperrors.ErrorResponse{OK: false, Error: message})
}
