package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/interfaces"
	"github.com/onerilhan/resource-booking-api/internal/utils"
)

// ResourceHandler serves /api/resources
type ResourceHandler struct {
	service interfaces.ResourceServiceInterface
}

// NewResourceHandler creates the handler
func NewResourceHandler(service interfaces.ResourceServiceInterface) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// RegisterRoutes mounts the resource endpoints on an /api/resources subrouter
func (h *ResourceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.List).Methods(http.MethodGet)
	r.HandleFunc("", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
}

// List GET /api/resources
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, resources)
}

// Get GET /api/resources/{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, resource)
}

// Create POST /api/resources
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := h.service.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int("resource_id", resource.ID).Msg("resource created")
	utils.WriteData(w, http.StatusCreated, resource)
}

// Update PUT /api/resources/{id}
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resource, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int("resource_id", resource.ID).Msg("resource updated")
	utils.WriteData(w, http.StatusOK, resource)
}

// Delete DELETE /api/resources/{id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int("resource_id", id).Msg("resource deleted")
	w.WriteHeader(http.StatusNoContent)
}

// parseID reads the {id} route variable. Anything but a base 10 integer is
// invalid input; an integer outside the SERIAL range cannot exist.
func parseID(r *http.Request) (int, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, apperrors.NotFound(apperrors.MessageResourceGone)
		}
		return 0, apperrors.InvalidInput(apperrors.MessageInvalidID)
	}
	return int(id), nil
}

// decodeBody reads a JSON object. An empty body or a JSON value that is not an
// object decodes to an empty map so the rule set reports the missing fields.
func decodeBody(r *http.Request) (map[string]interface{}, error) {
	var raw interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]interface{}{}, nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, apperrors.InvalidInput(apperrors.MessageInvalidJSON)
	}

	body, ok := raw.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}, nil
	}
	return body, nil
}

var errBodyTooLarge = errors.New("request body too large")

// writeError maps err onto its status and envelope. Internal detail is
// logged here and never written to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		utils.WriteMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	appErr := apperrors.From(err)
	logger := zerolog.Ctx(r.Context())

	switch appErr.Kind {
	case apperrors.KindInternal:
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	case apperrors.KindValidation:
		logger.Debug().Interface("errors", appErr.Fields).Msg("validation failed")
	default:
		logger.Debug().Str("kind", appErr.Kind.String()).Msg(appErr.Message)
	}

	utils.WriteJSON(w, appErr.Status(), apperrors.NewErrorResponse(appErr))
}
