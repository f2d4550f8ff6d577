package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"entity-mcp/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPostgres_Pool(t *testing.T) {
	tests := []struct {
		name         string
		maxConns     int
		expectedOpen int
	}{
		{name: "configured", maxConns: 7, expectedOpen: 7},
		{name: "default", expectedOpen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenPostgres(config.PostgresConfig{
				Host:           "localhost",
				Port:           5432,
				Database:       "membership",
				User:           "mcp",
				SSLMode:        "disable",
				MaxConnections: tt.maxConns,
			})
			require.NoError(t, err)
			defer db.Close()

			assert.Equal(t, tt.expectedOpen, db.Stats().MaxOpenConnections)
		})
	}
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name      string
		address   string
		expectErr bool
	}{
		{name: "host and port", address: mr.Addr()},
		{name: "url", address: "redis://" + mr.Addr() + "/0"},
		{name: "empty", expectErr: true},
		{name: "bad db in url", address: "redis://localhost:6379/notanumber", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := OpenRedis(config.RedisConfig{Address: tt.address})
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer client.Close()

			assert.NoError(t, client.Ping(context.Background()).Err())
		})
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		expected  bool
		expectErr bool
	}{
		{name: "present", status: http.StatusOK, expected: true},
		{name: "missing", status: http.StatusNotFound},
		{name: "unavailable", status: http.StatusServiceUnavailable, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodHead, r.Method)
				assert.Equal(t, "/partners", r.URL.Path)
				w.Header().Set("X-Elastic-Product", "Elasticsearch")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			es, err := OpenElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
			require.NoError(t, err)

			ok, err := IndexExists(context.Background(), es, "partners")
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestOpenElasticsearch_NoAddresses(t *testing.T) {
	_, err := OpenElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)
}
