package validation

import (
	"fmt"
	"regexp"
	"strings"

	"entity-mcp/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Error codes carried by ValidationError.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeExtraField           = "EXTRA_FIELD"
	CodeConstraintViolation  = "CONSTRAINT_VIOLATION"
)

const rootContext = "(root)"

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	schema *gojsonschema.Schema
}

// Compile parses a schema given as a Go value (usually a decoded JSON object).
func Compile(schema interface{}) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// CompileJSON parses a schema given as raw JSON.
func CompileJSON(schemaJSON []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks a Go value (map, slice, struct) against the schema.
func (s *Schema) Validate(document interface{}) (*ValidationResult, error) {
	return toResult(s.schema.Validate(gojsonschema.NewGoLoader(document)))
}

// ValidateJSON checks a raw JSON document against the schema.
func (s *Schema) ValidateJSON(document []byte) (*ValidationResult, error) {
	return toResult(s.schema.Validate(gojsonschema.NewBytesLoader(document)))
}

func toResult(result *gojsonschema.Result, err error) (*ValidationResult, error) {
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, convertError(re))
	}
	return out, nil
}

func convertError(re gojsonschema.ResultError) ValidationError {
	field := re.Field()
	code := CodeConstraintViolation

	switch re.Type() {
	case "required":
		code = CodeRequiredFieldMissing
		field = joinField(field, fmt.Sprint(re.Details()["property"]))
	case "invalid_type":
		code = CodeInvalidType
	case "additional_property_not_allowed":
		code = CodeExtraField
		field = joinField(field, fmt.Sprint(re.Details()["property"]))
	}

	return ValidationError{
		Field:   field,
		Message: re.Description(),
		Code:    code,
	}
}

func joinField(parent, property string) string {
	if parent == "" || parent == rootContext {
		return property
	}
	return parent + "." + property
}

// MissingFields lists the fields reported missing, in the order the schema
// declares them.
func (vr *ValidationResult) MissingFields() []string {
	var fields []string
	for _, err := range vr.Errors {
		if err.Code == CodeRequiredFieldMissing {
			fields = append(fields, err.Field)
		}
	}
	return fields
}

// Err converts a failed result to a StandardError: missing fields win over
// any other violation. A valid result yields nil.
func (vr *ValidationResult) Err() error {
	if vr == nil || vr.Valid {
		return nil
	}
	if missing := vr.MissingFields(); len(missing) > 0 {
		return errors.NewMissingRequiredFieldError(missing...)
	}
	return errors.NewInvalidArgumentsError(strings.Join(vr.GetErrorMessages(), "; "))
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateURL validates http(s) URL format
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}
