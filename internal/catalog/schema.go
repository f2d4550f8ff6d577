package catalog

import (
	_ "embed"
	"strings"
	"sync"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/validation"
)

//go:embed partner_schema.json
var partnerSchemaJSON []byte

var (
	partnerSchemaOnce sync.Once
	partnerSchema     *validation.Schema
	partnerSchemaErr  error
)

func validateDocument(partnersJSON []byte) error {
	partnerSchemaOnce.Do(func() {
		partnerSchema, partnerSchemaErr = validation.CompileJSON(partnerSchemaJSON)
	})
	if partnerSchemaErr != nil {
		return errors.NewCatalogInvalidError(partnerSchemaErr.Error())
	}

	result, err := partnerSchema.ValidateJSON(partnersJSON)
	if err != nil {
		return errors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid {
		return errors.NewCatalogInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
