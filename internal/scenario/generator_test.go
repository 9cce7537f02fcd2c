package scenario

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"restui/internal/eventlog"
)

func TestGenerateUntestedRequestSurfaces(t *testing.T) {
	agg := eventlog.New()

	got, err := Generate(GeneratorConfig{Method: "POST", Path: "/orders", Body: `{"a":1}`}, agg)

	assert.ErrorIs(t, err, ErrUntestedRequest)
	assert.Nil(t, got)

	logs := agg.APILogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "POST", logs[0].Method)
	assert.Equal(t, "/orders", logs[0].URL)
	assert.Equal(t, eventlog.SeverityError, logs[0].Severity())
	assert.Equal(t, `{"a":1}`, gjson.GetBytes(logs[0].Request, "body").String())
	assert.True(t, agg.Surfaced())
}

func TestGenerateIsSilent(t *testing.T) {
	agg := eventlog.New()

	got, err := Generate(GeneratorConfig{Method: "GET", Path: "/users", HasTestedRequest: true}, agg)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Basic API test", got[0].Title)
	assert.Contains(t, got[0].Content, `Given the API endpoint "/users"`)
	assert.Contains(t, got[0].Content, "When I send a GET request")

	logs := agg.APILogs()
	require.Len(t, logs, 1)
	assert.Equal(t, eventlog.MethodGenerate, logs[0].Method)
	assert.Equal(t, "scenarios", logs[0].URL)
	assert.Equal(t, 200, logs[0].Status())
	assert.Equal(t, int64(1), gjson.GetBytes(logs[0].Response, "body.scenarios.#").Int())
	assert.False(t, gjson.GetBytes(logs[0].Request, "body").Exists())
	assert.False(t, agg.Surfaced())
}

func TestGenerateOptionalScenarios(t *testing.T) {
	got, err := Generate(GeneratorConfig{
		Method:                  "PUT",
		Path:                    "/items/1",
		LastResponse:            json.RawMessage(`{"status":200}`),
		IncludeEnvironmentTests: true,
		HasTestedRequest:        true,
	}, nil)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Response validation", got[1].Title)
	assert.Equal(t, "Environment variable handling", got[2].Title)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Basic API request test", ExtractTitle("Feature: X\n  Scenario: Basic API request test\n  Given y"))
	assert.Equal(t, "Untitled Scenario", ExtractTitle("Feature: nothing here"))
}
