package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// requestSchema is a named JSON Schema for a request body.
type requestSchema struct {
	Name       string
	Definition map[string]any
	// FloatFields are top-level properties that must be written as float
	// literals. JSON Schema treats 0 and 0.0 alike, so they are checked on
	// the raw token.
	FloatFields []string
}

var number = map[string]any{"type": "number"}

var estimateSchema = &requestSchema{
	Name: "estimate_request",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"responsePattern", "previousLatentTraitEstimate"},
		"properties": map[string]any{
			"responsePattern": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"a", "b", "isCorrect"},
					"properties": map[string]any{
						"questionId": map[string]any{"type": "string"},
						"a":          number,
						"b":          number,
						"isCorrect":  map[string]any{"type": "boolean"},
					},
				},
			},
			"previousLatentTraitEstimate": number,
		},
	},
	FloatFields: []string{"previousLatentTraitEstimate"},
}

var selectSchema = &requestSchema{
	Name: "select_request",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questionList", "latentTraitEstimate"},
		"properties": map[string]any{
			"questionList": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"questionID", "a", "b"},
					"properties": map[string]any{
						"questionID": map[string]any{"type": "string", "minLength": 1},
						"a":          number,
						"b":          number,
						"c":          map[string]any{"type": []any{"number", "null"}},
					},
				},
			},
			"latentTraitEstimate": number,
		},
	},
	FloatFields: []string{"latentTraitEstimate"},
}

// MalformedError reports a request body that does not match its schema.
type MalformedError struct {
	// Message is the fixed per-operation explanation.
	Message string
	Err     error
}

func (e *MalformedError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error { return e.Err }

// ParseEstimateRequest validates raw against the estimate schema and
// decodes it.
func ParseEstimateRequest(raw []byte) (EstimateRequest, error) {
	var req EstimateRequest
	if err := parseBody(estimateSchema, MalformedEstimate, raw, &req); err != nil {
		return EstimateRequest{}, err
	}
	return req, nil
}

// ParseSelectRequest validates raw against the select schema and decodes it.
func ParseSelectRequest(raw []byte) (SelectRequest, error) {
	var req SelectRequest
	if err := parseBody(selectSchema, MalformedSelect, raw, &req); err != nil {
		return SelectRequest{}, err
	}
	return req, nil
}

func parseBody(schema *requestSchema, message string, raw []byte, v any) error {
	if err := validateBody(schema, raw); err != nil {
		return &MalformedError{Message: message, Err: err}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &MalformedError{Message: message, Err: err}
	}
	return nil
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw against schema. The returned error text lists
// each failing location on one line.
func validateBody(schema *requestSchema, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%s", flatten(err))
	}
	return checkFloatLiterals(schema, raw)
}

// checkFloatLiterals rejects integer literals such as 0 or -2 in the
// schema's float fields. 0.0, -2.5 and 1e-3 pass.
func checkFloatLiterals(schema *requestSchema, raw []byte) error {
	if len(schema.FloatFields) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	var details []string
	for _, name := range schema.FloatFields {
		lit, ok := fields[name]
		if !ok {
			continue
		}
		if tok := strings.TrimSpace(string(lit)); !strings.ContainsAny(tok, ".eE") {
			details = append(details, fmt.Sprintf("at '/%s': got integer %s, want float", name, tok))
		}
	}
	if len(details) > 0 {
		return fmt.Errorf("%s", strings.Join(details, "; "))
	}
	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema *requestSchema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, so round-trip the Go literal.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}

// flatten drops the schema banner line and joins the detail lines.
func flatten(err error) string {
	var details []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		details = append(details, strings.TrimPrefix(line, "- "))
	}
	if len(details) == 0 {
		return err.Error()
	}
	return strings.Join(details, "; ")
}
