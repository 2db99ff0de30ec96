package questiongen

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON schema.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

var questionDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Position of the question within its batch",
		},
		"question": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string", "minLength": 1},
			"minItems":    4,
			"maxItems":    4,
			"uniqueItems": true,
		},
		"correct": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"explanation": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
	},
	"required":             []any{"id", "question", "options", "correct", "explanation"},
	"additionalProperties": false,
}

// QuestionBatchSchema describes the wire shape of a list of questions.
var QuestionBatchSchema = &Schema{
	Name:        "question-batch",
	Description: "A batch of multiple-choice calculus questions",
	Definition: map[string]any{
		"type":  "array",
		"items": questionDefinition,
	},
}

// WireError reports JSON that does not match a Schema.
type WireError struct {
	Content []byte
	Err     error
}

func (e *WireError) Error() string { return fmt.Sprintf("invalid question JSON: %v", e.Err) }
func (e *WireError) Unwrap() error { return e.Err }

var schemaCache sync.Map // map[string]*jsonschema.Schema

// ValidateJSON checks raw against schema. JSON Schema cannot say that
// "correct" is one of "options", so callers still run AnswerValidator
// on decoded questions.
func ValidateJSON(schema *Schema, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &WireError{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	compiled, err := compiledSchema(schema)
	if err != nil {
		return &WireError{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &WireError{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// MarshalBatch encodes qs and checks the result against
// QuestionBatchSchema and the answer-membership rule.
func MarshalBatch(qs []Question) ([]byte, error) {
	if qs == nil {
		qs = []Question{}
	}
	raw, err := json.Marshal(qs)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSON(QuestionBatchSchema, raw); err != nil {
		return nil, err
	}
	av := &AnswerValidator{}
	for i := range qs {
		if verr := av.Validate(&qs[i]); verr != nil {
			return nil, &WireError{Content: raw, Err: verr}
		}
	}
	return raw, nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
