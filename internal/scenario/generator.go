// Package scenario generates Gherkin-style test scenarios for a request.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"restui/internal/eventlog"
)

// URL recorded for generation calls
const generateURL = "scenarios"

var ErrUntestedRequest = errors.New("please test the request before generating scenarios")

// GeneratedScenario is one generated feature file
type GeneratedScenario struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratorConfig describes the request scenarios are generated for
type GeneratorConfig struct {
	Method                  string            `json:"method"`
	Path                    string            `json:"path"`
	Headers                 map[string]string `json:"headers"`
	Body                    string            `json:"body,omitempty"`
	LastResponse            json.RawMessage   `json:"lastResponse,omitempty"`
	IncludeEnvironmentTests bool              `json:"includeEnvironmentTests"`
	HasTestedRequest        bool              `json:"hasTestedRequest"`
}

// Generate builds the scenarios for cfg and reports the call to rec.
// Successful generation is logged under the silent GENERATE method; a
// request that was never tested is logged under its own method so the
// presenter surfaces the problem.
func Generate(cfg GeneratorConfig, rec eventlog.Recorder) ([]GeneratedScenario, error) {
	reqPayload := requestPayload(cfg)

	if !cfg.HasTestedRequest {
		record(rec, cfg.Method, cfg.Path, reqPayload, responsePayload(400, "body.error", ErrUntestedRequest.Error()))
		return nil, ErrUntestedRequest
	}

	scenarios := []GeneratedScenario{
		newScenario("Basic API test", fmt.Sprintf(`Feature: API Testing
  Scenario: Basic API request test
    Given the API endpoint "%s"
    When I send a %s request
    Then the response should be valid`, cfg.Path, cfg.Method)),
	}

	if len(cfg.LastResponse) > 0 && string(cfg.LastResponse) != "null" {
		scenarios = append(scenarios, newScenario("Response validation", fmt.Sprintf(`Feature: Response Validation
  Scenario: Validate response structure
    Given the API endpoint "%s"
    When I send a %s request
    Then the response should have required fields`, cfg.Path, cfg.Method)))
	}

	if cfg.IncludeEnvironmentTests {
		scenarios = append(scenarios, newScenario("Environment variable handling", `Feature: Environment Variables
  Scenario: Environment variable handling
    When I set the environment variable "variable" to "value1"
    Then the environment variable "variable" should have value "value1"`))
	}

	resp := responsePayload(200, "body.message", "Generated test scenarios")
	if out, err := sjson.SetBytes(resp, "body.scenarios", scenarios); err == nil {
		resp = out
	}
	record(rec, eventlog.MethodGenerate, generateURL, reqPayload, resp)

	return scenarios, nil
}

var titlePattern = regexp.MustCompile(`Scenario:([^\n]+)`)

// ExtractTitle returns the scenario title of a feature file
func ExtractTitle(content string) string {
	m := titlePattern.FindStringSubmatch(content)
	if m == nil {
		return "Untitled Scenario"
	}
	return strings.TrimSpace(m[1])
}

func newScenario(title, content string) GeneratedScenario {
	return GeneratedScenario{ID: uuid.NewString(), Title: title, Content: content}
}

func requestPayload(cfg GeneratorConfig) json.RawMessage {
	doc := []byte(`{}`)
	doc, _ = sjson.SetBytes(doc, "method", cfg.Method)
	headers := cfg.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	doc, _ = sjson.SetBytes(doc, "headers", headers)
	if cfg.Method != "GET" && cfg.Body != "" {
		doc, _ = sjson.SetBytes(doc, "body", cfg.Body)
	}
	return doc
}

func responsePayload(status int, path, value string) json.RawMessage {
	doc := []byte(`{"headers":{}}`)
	doc, _ = sjson.SetBytes(doc, "status", status)
	doc, _ = sjson.SetBytes(doc, path, value)
	return doc
}

func record(rec eventlog.Recorder, method, url string, req, resp json.RawMessage) {
	if rec != nil {
		rec.RecordAPICall(method, url, req, resp)
	}
}
