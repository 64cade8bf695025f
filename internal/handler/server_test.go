package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/driver-compliance/backend/internal/handler"
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production, minus the middleware.
func newHTTPHandler(svcs handler.Services) http.Handler {
	return handler.NewServer(svcs, nil).Routes()
}

// do sends a request with an optional JSON body through h and returns the recorder.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorder body into a value of type T.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// requireErrorCode asserts the status and the error.code of a JSON error body.
func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) handler.ErrorResponse {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[handler.ErrorResponse](t, rec)
	require.Equal(t, code, body.Error.Code)
	return body
}

func TestRoutes_UnknownRoute_404JSON(t *testing.T) {
	rec := do(t, newHTTPHandler(handler.Services{}), http.MethodGet, "/trips", nil)

	requireErrorCode(t, rec, http.StatusNotFound, "not_found")
}

func TestRoutes_UnmountedServiceHasNoRoutes(t *testing.T) {
	// Without a DriverServicer the driver routes are not registered.
	rec := do(t, newHTTPHandler(handler.Services{}), http.MethodGet, "/drivers/1", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
