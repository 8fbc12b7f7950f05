// Package metrics defines the catalog of evaluation metrics the wizard can
// attach to a job. Each metric carries default parameter values and a JSON
// schema for its parameter struct so a front end can render a settings form.
package metrics

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ExactMatchParams configures the exact-match metric.
type ExactMatchParams struct {
	CaseSensitive   bool `json:"case_sensitive"`
	StripWhitespace bool `json:"strip_whitespace"`
}

// F1Params configures the token-overlap F1 metric.
type F1Params struct {
	// Beta weights recall against precision; 1.0 is the balanced F1.
	Beta float64 `json:"beta" jsonschema:"minimum=0.1,maximum=10"`
}

// SemanticSimilarityParams configures the embedding-similarity metric.
type SemanticSimilarityParams struct {
	Threshold float64 `json:"threshold" jsonschema:"minimum=0,maximum=1"`
}

// LLMJudgeParams configures the model-graded metric.
type LLMJudgeParams struct {
	Criteria string `json:"criteria"`
	Scale    int    `json:"scale" jsonschema:"minimum=2,maximum=10"`
}

// Metric is one catalog entry.
type Metric struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Defaults are the parameter values used when the user configures
	// nothing.
	Defaults map[string]any `json:"defaults"`

	// params is the prototype struct the parameter schema is reflected from.
	params any
}

// catalog lists the built-in metrics in display order.
var catalog = []Metric{
	{
		ID:          "exact_match",
		Name:        "Exact match",
		Description: "Prediction must equal the reference answer.",
		Defaults:    map[string]any{"case_sensitive": false, "strip_whitespace": true},
		params:      &ExactMatchParams{},
	},
	{
		ID:          "f1",
		Name:        "Token F1",
		Description: "Token-overlap F1 between prediction and reference.",
		Defaults:    map[string]any{"beta": 1.0},
		params:      &F1Params{},
	},
	{
		ID:          "semantic_similarity",
		Name:        "Semantic similarity",
		Description: "Embedding cosine similarity against the reference.",
		Defaults:    map[string]any{"threshold": 0.8},
		params:      &SemanticSimilarityParams{},
	},
	{
		ID:          "llm_judge",
		Name:        "LLM judge",
		Description: "A grading model scores the prediction against criteria.",
		Defaults:    map[string]any{"criteria": "correctness", "scale": 5},
		params:      &LLMJudgeParams{},
	},
}

// Catalog returns the built-in metrics in display order.
func Catalog() []Metric {
	out := make([]Metric, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the metric with the given ID.
func Get(id string) (Metric, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Metric{}, false
}

// ParameterSchema returns the JSON schema describing the metric's parameters.
func (m Metric) ParameterSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(m.params)
	return json.MarshalIndent(schema, "", "  ")
}
