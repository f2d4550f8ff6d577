package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"entity-mcp/internal/common/database"

	"github.com/elastic/go-elasticsearch/v8"
)

// maxSearchPartners bounds a single catalog search.
const maxSearchPartners = 1000

var partnerSearchBody = fmt.Sprintf(`{
  "size": %d,
  "query": {"match_all": {}},
  "sort": [{"position": {"order": "asc", "unmapped_type": "long"}}]
}`, maxSearchPartners)

// ElasticsearchSource reads partner documents from an index, ordered by their
// position field.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSource(client *elasticsearch.Client, index string) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index}
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) Load(ctx context.Context) ([]byte, error) {
	exists, err := database.IndexExists(ctx, s.client, s.index)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("index %s not found", s.index)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(partnerSearchBody)),
	)
	if err != nil {
		return nil, fmt.Errorf("search partners: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search partners: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	if parsed.Hits.Total.Value > len(docs) {
		return nil, fmt.Errorf("index %s holds %d partners, at most %d can be loaded",
			s.index, parsed.Hits.Total.Value, maxSearchPartners)
	}

	return json.Marshal(docs)
}
