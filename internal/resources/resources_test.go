package resources

import (
	"os"
	"path/filepath"
	"testing"

	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_DefaultDocuments(t *testing.T) {
	store := NewStore(config.ResourcesConfig{BaseDir: "../../data"})

	docs := store.List()
	require.Len(t, docs, 4)

	uris := make([]string, 0, len(docs))
	for _, d := range docs {
		uris = append(uris, d.URI)
		assert.Equal(t, "application/json", d.MIMEType)
	}
	assert.Equal(t, []string{"conversation://1", "conversation://2", "conversation://delivery", "data://membership"}, uris)

	for _, uri := range uris {
		text, err := store.Read(uri)
		require.NoError(t, err, uri)
		assert.NotEmpty(t, text)
	}
}

func TestStore_Read(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat.json"),
		[]byte(`{"speaker":"지민","lines":["강남역 갈래?"],"meta":{"z":1,"a":"<b>"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"speaker":`), 0o600))

	store := NewStore(config.ResourcesConfig{
		BaseDir: dir,
		Documents: []config.ResourceDocument{
			{URI: "conversation://chat", Name: "Chat", Path: "chat.json"},
			{URI: "conversation://broken", Name: "Broken", Path: "broken.json"},
			{URI: "conversation://gone", Name: "Gone", Path: "gone.json"},
		},
	})

	tests := []struct {
		name        string
		uri         string
		expected    string
		expectedErr errors.ErrorCode
	}{
		{
			name: "pretty prints and keeps key order and non-ascii",
			uri:  "conversation://chat",
			expected: `{
  "speaker": "지민",
  "lines": [
    "강남역 갈래?"
  ],
  "meta": {
    "z": 1,
    "a": "<b>"
  }
}`,
		},
		{name: "unknown uri", uri: "conversation://9", expectedErr: errors.ErrCodeUnknownResource},
		{name: "invalid json", uri: "conversation://broken", expectedErr: errors.ErrCodeResourceReadFailed},
		{name: "missing file", uri: "conversation://gone", expectedErr: errors.ErrCodeResourceReadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := store.Read(tt.uri)
			if tt.expectedErr != "" {
				assert.True(t, errors.HasCode(err, tt.expectedErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestStore_ListIsCopy(t *testing.T) {
	store := NewStore(config.ResourcesConfig{BaseDir: "../../data"})

	docs := store.List()
	docs[0].URI = "changed"

	assert.Equal(t, "conversation://1", store.List()[0].URI)
}
