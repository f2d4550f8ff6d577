package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	httpclient "entity-mcp/internal/common/http"

	"gopkg.in/yaml.v3"
)

// Source produces the raw partner catalog as JSON: either a partner array or
// a document carrying one under "partners".
type Source interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
}

// FileSource reads the catalog from a JSON or YAML file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml catalog: %w", err)
	}
	return json.Marshal(doc)
}

// URLSource fetches the catalog document over HTTP.
type URLSource struct {
	URL    string
	client *httpclient.Client
}

func NewURLSource(url string, client *httpclient.Client) *URLSource {
	return &URLSource{URL: url, client: client}
}

func (s *URLSource) Name() string { return "url" }

func (s *URLSource) Load(ctx context.Context) ([]byte, error) {
	return s.client.GetJSON(ctx, s.URL)
}
