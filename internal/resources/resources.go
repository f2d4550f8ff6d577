// Package resources serves the sample conversations and membership data as
// read-only documents.
package resources

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/errors"
)

type Document struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	path        string
}

// Store resolves documents by URI. Files are read on every call, so edits on
// disk show up without a restart.
type Store struct {
	docs  []Document
	byURI map[string]int
}

func NewStore(cfg config.ResourcesConfig) *Store {
	docs := cfg.Documents
	if len(docs) == 0 {
		docs = config.DefaultResourceDocuments()
	}

	s := &Store{byURI: make(map[string]int, len(docs))}
	for _, d := range docs {
		path := d.Path
		if !filepath.IsAbs(path) && cfg.BaseDir != "" {
			path = filepath.Join(cfg.BaseDir, path)
		}
		mimeType := d.MIMEType
		if mimeType == "" {
			mimeType = "application/json"
		}
		s.byURI[d.URI] = len(s.docs)
		s.docs = append(s.docs, Document{
			URI:         d.URI,
			Name:        d.Name,
			Description: d.Description,
			MIMEType:    mimeType,
			path:        path,
		})
	}
	return s
}

// List returns the documents in configuration order.
func (s *Store) List() []Document {
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Read returns the document behind uri as JSON indented by two spaces.
func (s *Store) Read(uri string) (string, error) {
	i, ok := s.byURI[uri]
	if !ok {
		return "", errors.NewUnknownResourceError(uri)
	}

	raw, err := os.ReadFile(s.docs[i].path)
	if err != nil {
		return "", errors.NewResourceReadFailedError(uri, err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", errors.NewResourceReadFailedError(uri, err)
	}
	return buf.String(), nil
}
