package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already sent; nothing useful to do on failure.
	json.NewEncoder(w).Encode(v)
}

// errBodyTooLarge is returned by decodeBody when the request body exceeds the
// limit set by middleware.NewMaxBodySizeHandler.
var errBodyTooLarge = errors.New("request body too large")

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
// and trailing data.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errors.New("request body is required")
		default:
			return fmt.Errorf("malformed request body: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// writeBodyError responds to a decodeBody failure.
func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request_too_large", err.Error()))
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
}

// pathParam binds the named chi URL parameter into dest using the OpenAPI
// "simple" style, the same binding the generated server code performs.
func pathParam(r *http.Request, name string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
}

// driverIDParam reads {driverID} and rejects non-positive values.
func driverIDParam(r *http.Request) (int64, error) {
	var id int64
	if err := pathParam(r, "driverID", &id); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("driverID must be a positive integer")
	}
	return id, nil
}

// uuidParam reads a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := pathParam(r, name, &id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// queryParam binds an OpenAPI "form" style query parameter into dest.
// Optional parameters should bind into a pointer so absence stays nil.
func queryParam(r *http.Request, name string, required bool, dest any) error {
	return runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest)
}
