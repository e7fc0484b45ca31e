package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// decode reads the JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return validate(w, v, dst)
}

func validate(w http.ResponseWriter, v *validator.CustomValidator, dst interface{}) bool {
	if err := v.Validate(dst); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func queryFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// pageRequest reads page and limit from the query string with defaults applied.
func pageRequest(w http.ResponseWriter, r *http.Request) (dto.PageRequest, bool) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		response.BadRequest(w, "Invalid page")
		return dto.PageRequest{}, false
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		response.BadRequest(w, "Invalid limit")
		return dto.PageRequest{}, false
	}
	return dto.PageRequest{Page: page, Limit: limit}, true
}

// commonError maps the errors shared by every usecase. Anything else is a 500
// carrying fallback as its message.
func commonError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "")
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "Access denied")
	case errors.Is(err, usecase.ErrInvalidID):
		response.BadRequest(w, "Invalid ID")
	case errors.Is(err, usecase.ErrInvalidDateFormat):
		response.BadRequest(w, "Invalid date format. Use YYYY-MM-DD")
	case errors.Is(err, usecase.ErrNothingToUpdate):
		response.BadRequest(w, "No fields to update")
	default:
		response.InternalServerError(w, fallback)
	}
}

// capitalize turns a usecase error message into a response message.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
