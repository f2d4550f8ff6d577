// internal/workers/membership/recommend-coupons/handler_test.go
package recommendcoupons

import (
	"context"
	"testing"

	"entity-mcp/internal/catalog"
	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/validation"
	"entity-mcp/internal/models"
	"entity-mcp/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testCatalogJSON = `[
  {
    "id": "p_ccw",
    "name": "CCW Cinema",
    "category": "movie",
    "locations": [
      {"near": "Gangnam Station Exit 3", "map_url": "https://maps.example.com/ccw-gangnam"},
      {"near": "Hongdae Station Exit 9", "map_url": "https://maps.example.com/ccw-hongdae"}
    ],
    "benefits": [{"movie": {"free_tickets_per_year": 3, "one_plus_one_per_year": 6}}]
  },
  {
    "id": "p_arena",
    "name": "Seoul Live Arena",
    "category": "concert",
    "locations": [{"near": "Jamsil Sports Complex", "map_url": "https://maps.example.com/arena"}],
    "benefits": [{"ticket": {"member_percent": 30, "companions_count": 3, "companions_percent": 20}}]
  }
]`

func createTestConfig() *Config {
	return LoadConfig()
}

// Create a test logger that implements your logger.Logger interface
type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func createTestCatalog(t *testing.T) *catalog.Catalog {
	cat, err := catalog.Parse([]byte(testCatalogJSON))
	require.NoError(t, err)
	return cat
}

func createTestSchema(t *testing.T) *validation.Schema {
	reg, err := registry.LoadRegistry("../../../../configs/tool-registry.json")
	require.NoError(t, err)

	tool, ok := reg.FindByTaskType(TaskType)
	require.True(t, ok)

	raw, err := tool.RawInputSchema()
	require.NoError(t, err)

	schema, err := validation.CompileJSON(raw)
	require.NoError(t, err)
	return schema
}

func createTestHandler(t *testing.T, config *Config) *Handler {
	return NewHandler(config, createTestCatalog(t), createTestSchema(t), newTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		expectedOutput *Output
	}{
		{
			name:  "nearest location from second place",
			input: &Input{Places: []string{"CCW", "Hongdae"}, Times: []string{"Saturday"}},
			expectedOutput: &Output{
				CouponsFound: true,
				Coupons: []models.Coupon{
					{
						PartnerID:   "p_ccw",
						PartnerName: "CCW Cinema",
						Category:    "movie",
						Description: "3 free tickets/year, 6 buy-one-get-one/year",
						Location:    "Hongdae Station Exit 9",
						MapURL:      "https://maps.example.com/ccw-hongdae",
					},
				},
				Message: "1 coupons recommended",
			},
		},
		{
			name:  "ticket benefit",
			input: &Input{Places: []string{"Jamsil"}},
			expectedOutput: &Output{
				CouponsFound: true,
				Coupons: []models.Coupon{
					{
						PartnerID:   "p_arena",
						PartnerName: "Seoul Live Arena",
						Category:    "concert",
						Description: "30% off for self, 3 companions at 20% off",
						Location:    "Jamsil Sports Complex",
						MapURL:      "https://maps.example.com/arena",
					},
				},
				Message: "1 coupons recommended",
			},
		},
		{
			name:  "no match",
			input: &Input{Places: []string{"Busan"}},
			expectedOutput: &Output{
				CouponsFound: false,
				Coupons:      []models.Coupon{},
				Message:      "no coupons found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, createTestConfig())

			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOutput, output)
		})
	}
}

func TestHandler_Execute_CalendarEvent(t *testing.T) {
	config := createTestConfig()
	config.IncludeCalendarEvent = true
	handler := createTestHandler(t, config)

	output, err := handler.Execute(context.Background(), &Input{Places: []string{"Gangnam Station"}})
	require.NoError(t, err)
	require.Len(t, output.Coupons, 1)

	event := output.Coupons[0].CalendarEvent
	require.NotNil(t, event)
	assert.Equal(t, "CCW Cinema visit", event.Title)
	assert.Equal(t, "Gangnam Station Exit 3", event.Location)
	assert.Contains(t, event.Description, "Map: https://maps.example.com/ccw-gangnam")
}

// ==========================
// Input Validation Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	tests := []struct {
		name        string
		variables   string
		expectedErr errors.ErrorCode
		places      []string
	}{
		{name: "valid", variables: `{"places": ["Gangnam"], "orderId": 7}`, places: []string{"Gangnam"}},
		{name: "empty places", variables: `{"places": []}`, places: []string{}},
		{name: "missing places", variables: `{"times": ["noon"]}`, expectedErr: errors.ErrCodeMissingRequiredField},
		{name: "places not array", variables: `{"places": "Gangnam"}`, expectedErr: errors.ErrCodeInvalidArguments},
		{name: "malformed", variables: `{"places": [`, expectedErr: errors.ErrCodeInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, createTestConfig())

			input, err := handler.parseInput(tt.variables)
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.expectedErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.places, input.Places)
		})
	}
}

func TestHandler_ParseInput_WithoutSchema(t *testing.T) {
	handler := NewHandler(createTestConfig(), createTestCatalog(t), nil, newTestLogger(t))

	_, err := handler.parseInput(`{}`)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingRequiredField))
}
