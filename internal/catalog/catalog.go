// Package catalog loads the partner catalog once and hands out a read-only view of it.
package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/models"
)

// Catalog is an immutable, ordered set of partners.
type Catalog struct {
	partners []models.Partner
	index    map[string]int
}

// New builds a Catalog, rejecting duplicate ids and partners without locations.
func New(partners []models.Partner) (*Catalog, error) {
	c := &Catalog{
		partners: slices.Clone(partners),
		index:    make(map[string]int, len(partners)),
	}

	for i, p := range c.partners {
		if _, dup := c.index[p.ID]; dup {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("duplicate partner id %q", p.ID))
		}
		if len(p.Locations) == 0 {
			return nil, errors.NewPartnerWithoutLocationError(p.ID)
		}
		c.index[p.ID] = i
	}

	return c, nil
}

// Parse validates a JSON partner list (or a document with a "partners" key)
// and builds a Catalog from it.
func Parse(raw []byte) (*Catalog, error) {
	partnersJSON, err := extractPartners(raw)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}

	if err := validateDocument(partnersJSON); err != nil {
		return nil, err
	}

	var partners []models.Partner
	if err := json.Unmarshal(partnersJSON, &partners); err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}

	return New(partners)
}

// Partners returns the partners in catalog order. The slice is a copy; the
// partners themselves must be treated as read-only.
func (c *Catalog) Partners() []models.Partner {
	return slices.Clone(c.partners)
}

func (c *Catalog) Get(id string) (models.Partner, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Partner{}, false
	}
	return c.partners[i], true
}

func (c *Catalog) Len() int {
	return len(c.partners)
}

// MarshalJSON writes the catalog back as a partner list, as stored in the cache.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.partners)
}

// extractPartners accepts a bare partner array or an object holding one under
// "partners".
func extractPartners(raw []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "["):
		return []byte(trimmed), nil
	case strings.HasPrefix(trimmed, "{"):
		var doc map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return nil, fmt.Errorf("decode catalog document: %w", err)
		}
		partners, ok := doc["partners"]
		if !ok {
			return nil, fmt.Errorf("catalog document has no partners key")
		}
		return partners, nil
	default:
		return nil, fmt.Errorf("catalog must be a JSON array or object")
	}
}
