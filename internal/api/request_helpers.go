package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, &ParamError{Param: name, Reason: "is required"}
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, &ParamError{Param: name, Reason: "has invalid format"}
	}
	return id, nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParamError{Param: name, Reason: "must be an integer"}
	}
	if n < lo || n > hi {
		return 0, &ParamError{Param: name, Reason: fmt.Sprintf("must be between %d and %d", lo, hi)}
	}
	return n, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ParamError{Param: name, Reason: "must be a boolean"}
	}
	return b, nil
}

// queryUint64 parses an optional unsigned query parameter. The boolean is
// false when the parameter is absent.
func queryUint64(r *http.Request, name string) (uint64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, &ParamError{Param: name, Reason: "must be an unsigned integer"}
	}
	return n, true, nil
}
