package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"entity-mcp/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

func TestMux_Endpoints(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		health       error
		expectedCode int
		expectedBody string
	}{
		{name: "health", path: "/health", expectedCode: http.StatusOK, expectedBody: `{"status":"healthy"}`},
		{name: "ready", path: "/ready", expectedCode: http.StatusOK, expectedBody: `{"status":"ready"}`},
		{name: "not ready", path: "/ready", health: errors.New("no topology"), expectedCode: http.StatusServiceUnavailable, expectedBody: `{"status":"not ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(stubHealth{err: tt.health}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestMux_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(stubHealth{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestInputSchema(t *testing.T) {
	reg, err := registry.LoadRegistry("../../configs/tool-registry.json")
	require.NoError(t, err)

	schema, err := inputSchema(reg, "issue-ticket")
	require.NoError(t, err)
	result, err := schema.Validate(map[string]interface{}{"orderNumber": "A1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"customerName", "product"}, result.MissingFields())

	_, err = inputSchema(reg, "franchise-search")
	assert.Error(t, err)
}
