// Package optimizer defines the catalog of optimization strategies the
// remote executor supports. The wizard only selects a strategy and fills its
// parameters; the algorithms themselves run server-side and are observed
// through the session stream.
package optimizer

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// MetaPromptParams configures the meta-prompt rewriting strategy.
type MetaPromptParams struct {
	Rounds      int     `json:"rounds" jsonschema:"minimum=1,maximum=20"`
	Temperature float64 `json:"temperature" jsonschema:"minimum=0,maximum=2"`
}

// FewShotParams configures bootstrapped few-shot example selection.
type FewShotParams struct {
	MaxExamples     int  `json:"max_examples" jsonschema:"minimum=1,maximum=32"`
	ShuffleExamples bool `json:"shuffle_examples"`
}

// InstructionSearchParams configures instruction candidate search.
type InstructionSearchParams struct {
	Candidates int     `json:"candidates" jsonschema:"minimum=2,maximum=50"`
	Depth      int     `json:"depth" jsonschema:"minimum=1,maximum=5"`
	MinDelta   float64 `json:"min_delta" jsonschema:"minimum=0"`
}

// Optimizer is one catalog entry.
type Optimizer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Defaults are the parameter values submitted when the user changes
	// nothing.
	Defaults map[string]any `json:"defaults"`

	params any
}

var catalog = []Optimizer{
	{
		ID:          "meta_prompt",
		Name:        "Meta-prompt",
		Description: "An optimizer model iteratively rewrites the prompt from scored feedback.",
		Defaults:    map[string]any{"rounds": 5, "temperature": 0.9},
		params:      &MetaPromptParams{},
	},
	{
		ID:          "bootstrap_fewshot",
		Name:        "Bootstrapped few-shot",
		Description: "Selects and orders dataset examples that lift the metric.",
		Defaults:    map[string]any{"max_examples": 8, "shuffle_examples": true},
		params:      &FewShotParams{},
	},
	{
		ID:          "instruction_search",
		Name:        "Instruction search",
		Description: "Searches instruction candidates and keeps the best scorer.",
		Defaults:    map[string]any{"candidates": 10, "depth": 2, "min_delta": 0.0},
		params:      &InstructionSearchParams{},
	},
}

// Catalog returns the built-in optimizers in display order.
func Catalog() []Optimizer {
	out := make([]Optimizer, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the optimizer with the given ID.
func Get(id string) (Optimizer, bool) {
	for _, o := range catalog {
		if o.ID == id {
			return o, true
		}
	}
	return Optimizer{}, false
}

// ParameterSchema returns the JSON schema describing the optimizer's
// parameters.
func (o Optimizer) ParameterSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(o.params)
	return json.MarshalIndent(schema, "", "  ")
}

// ValidateParams rejects parameter keys the optimizer does not declare.
// Value-range validation happens server-side against the same schema.
func (o Optimizer) ValidateParams(values map[string]any) error {
	for key := range values {
		if _, ok := o.Defaults[key]; !ok {
			return fmt.Errorf("unknown parameter %q for optimizer %s", key, o.ID)
		}
	}
	return nil
}
