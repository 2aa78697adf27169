package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tabungan/internal/calc"
	"tabungan/internal/core"
	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/services"
	"tabungan/internal/storage"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest      = errors.New("bad request")
	errUnauthenticated = errors.New("missing or malformed bearer token")
	errForbidden       = errors.New("forbidden")
	errRateLimited     = errors.New("rate limited")
	errPanic           = errors.New("internal panic")
)

// invalidInput are the errors that mean the caller sent bad data.
var invalidInput = []error{
	errBadRequest,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidSource,
	core.ErrEmptyTitle,
	core.ErrEmptyCategory,
	core.ErrEmptyUsername,
	core.ErrMissingUserID,
	core.ErrNoteTooLong,
	core.ErrTitleTooLong,
	core.ErrUnknownRange,
	services.ErrWeakPassword,
	services.ErrNameRequired,
	services.ErrUnknownPreference,
	services.ErrInvalidPreference,
	calc.ErrSyntax,
	calc.ErrDivByZero,
	calc.ErrDomain,
	calc.ErrNotFinite,
	calc.ErrEmptyInput,
}

// classify maps an error to a status code and the message shown to the
// user. fallback is the message for unexpected failures.
func classify(err error, fallback i18n.Key) (int, i18n.Key) {
	switch {
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, i18n.ErrRateLimited
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, i18n.ErrLoginFailed
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, i18n.ErrUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, i18n.ErrUnauthorized
	case errors.Is(err, services.ErrUsernameTaken):
		return http.StatusConflict, i18n.ErrUsernameTaken
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, i18n.ErrNotFound
	}
	for _, target := range invalidInput {
		if errors.Is(err, target) {
			return http.StatusBadRequest, i18n.ErrInvalidInput
		}
	}
	return http.StatusInternalServerError, fallback
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError sends {"error": message} in the caller's language. Server side
// failures are logged with the underlying error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback i18n.Key) {
	status, key := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path,
		)
	}
	writeJSON(w, status, errorBody{Error: s.catalog(r).Text(key)})
}

// catalog picks the signed-in user's language preference, or the
// Accept-Language header for anonymous requests.
func (s *Server) catalog(r *http.Request) i18n.Catalog {
	if userID, ok := userIDFrom(r.Context()); ok && s.svc.Prefs != nil {
		return i18n.For(s.svc.Prefs.Language(r.Context(), userID))
	}
	return i18n.For(i18n.FromAcceptLanguage(r.Header.Get("Accept-Language")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads one JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
