package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	httpclient "entity-mcp/internal/common/http"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSource_Load(t *testing.T) {
	yamlCatalog := `
partners:
  - id: p1
    name: CCW Cinema
    category: movie
    locations:
      - near: Gangnam Station Exit 3
        map_url: https://maps.example.com/p1
    benefits:
      - type: percent_discount
        value_percent: 10
`

	tests := []struct {
		name string
		path string
	}{
		{name: "json", path: writeTestFile(t, "partners.json", testPartnersJSON)},
		{name: "yaml", path: writeTestFile(t, "partners.yaml", yamlCatalog)},
		{name: "bundled catalog", path: "../../data/membership.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := NewFileSource(tt.path).Load(context.Background())
			require.NoError(t, err)

			cat, err := Parse(raw)
			require.NoError(t, err)
			assert.Positive(t, cat.Len())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.json")).Load(context.Background())
		assert.Error(t, err)
	})
}

func TestURLSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, testPartnersJSON)
	}))
	defer srv.Close()

	client := httpclient.NewClient(time.Second)

	raw, err := NewURLSource(srv.URL+"/catalog", client).Load(context.Background())
	require.NoError(t, err)
	cat, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	_, err = NewURLSource(srv.URL+"/missing", client).Load(context.Background())
	assert.Error(t, err)
}

func TestNewPostgresSource_RejectsTableName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"", "partners; DROP TABLE x", "1partners", "public.partners"} {
		_, err := NewPostgresSource(db, table)
		assert.Error(t, err, table)
	}
}

func TestPostgresSource_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	source, err := NewPostgresSource(db, "partners")
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "name", "category", "locations", "benefits"}).
		AddRow("p1", "CCW Cinema", "movie",
			[]byte(`[{"near": "Gangnam Station Exit 3", "map_url": "https://maps.example.com/p1"}]`),
			[]byte(`[{"type": "percent_discount", "value_percent": 10}]`)).
		AddRow("p2", "Sunny Brunch", nil,
			[]byte(`[{"near": "Yeouido IFC Mall", "map_url": "https://maps.example.com/p2"}]`),
			nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, category, locations, benefits FROM "partners" ORDER BY position, id`)).
		WillReturnRows(rows)

	raw, err := source.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	cat, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	p2, ok := cat.Get("p2")
	require.True(t, ok)
	assert.Empty(t, p2.Category)
	assert.Empty(t, p2.Benefits)
}

func TestPostgresSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	source, err := NewPostgresSource(db, "partners")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = source.Load(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func newTestElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSource_Load(t *testing.T) {
	var partners []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(testPartnersJSON), &partners))

	var gotPath string
	var gotBody map[string]interface{}
	client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		hits := make([]map[string]interface{}, 0, len(partners))
		for _, p := range partners {
			hits = append(hits, map[string]interface{}{"_source": p})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": len(hits)},
				"hits":  hits,
			},
		})
	})

	raw, err := NewElasticsearchSource(client, "partners").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/partners/_search", gotPath)
	assert.EqualValues(t, maxSearchPartners, gotBody["size"])

	cat, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "p1", cat.Partners()[0].ID)
}

func TestElasticsearchSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "index missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"error": {"type": "index_not_found_exception"}}`)
			},
		},
		{
			name: "truncated result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"hits": {"total": {"value": 5000}, "hits": []}}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestElasticsearch(t, tt.handler)
			_, err := NewElasticsearchSource(client, "partners").Load(context.Background())
			assert.Error(t, err)
		})
	}
}
