package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/me", nil)
	RequestLogger(logger)(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Contains(t, buf.String(), `"path":"/v1/dashboard/me"`)
	require.Contains(t, buf.String(), `"status":418`)
}
