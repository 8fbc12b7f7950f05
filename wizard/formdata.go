// Package wizard holds the aggregate form state of one configuration session
// and the pure validation engine that derives per-section completion and
// overall submit-readiness from it.
package wizard

import (
	"github.com/weave-labs/promptwizard/roles"
)

// UseCase is the task template determining which dataset fields must be
// mapped before submission.
type UseCase string

const (
	UseCaseQA     UseCase = "qa"
	UseCaseRAG    UseCase = "rag"
	UseCaseCustom UseCase = "custom"
)

func (u UseCase) Valid() bool {
	switch u {
	case UseCaseQA, UseCaseRAG, UseCaseCustom:
		return true
	}
	return false
}

// RequiredFields returns the target field names the use case needs mapped.
// Custom requires none; it only carries mappings the user adds explicitly.
func (u UseCase) RequiredFields() []string {
	switch u {
	case UseCaseQA:
		return []string{"question", "answer"}
	case UseCaseRAG:
		return []string{"context", "query", "answer"}
	default:
		return nil
	}
}

// FormData is the aggregate wizard state for one session. It is a plain
// mutable structure; the validation engine never modifies it.
type FormData struct {
	Prompt      string  `json:"prompt"`
	UseCase     UseCase `json:"use_case"`
	DatasetPath string  `json:"dataset_path"`

	// FieldMappings maps target field name to source dataset field name.
	FieldMappings map[string]string `json:"field_mappings"`

	Metrics              []string                  `json:"metrics"`
	MetricConfigurations map[string]map[string]any `json:"metric_configurations"`

	ModelConfigs []*roles.ModelConfig `json:"model_configs"`

	SelectedOptimizer   string         `json:"selected_optimizer"`
	OptimizerParameters map[string]any `json:"optimizer_params"`
}

// NewFormData returns an empty form with its maps allocated.
func NewFormData() *FormData {
	return &FormData{
		FieldMappings:        make(map[string]string),
		MetricConfigurations: make(map[string]map[string]any),
		OptimizerParameters:  make(map[string]any),
	}
}

// HasMetric reports whether the metric ID is selected.
func (fd *FormData) HasMetric(id string) bool {
	for _, m := range fd.Metrics {
		if m == id {
			return true
		}
	}
	return false
}

// SelectMetric adds the metric ID when not already selected.
func (fd *FormData) SelectMetric(id string) {
	if !fd.HasMetric(id) {
		fd.Metrics = append(fd.Metrics, id)
	}
}

// DeselectMetric removes the metric ID and its parameter configuration.
func (fd *FormData) DeselectMetric(id string) {
	for i, m := range fd.Metrics {
		if m == id {
			fd.Metrics = append(fd.Metrics[:i], fd.Metrics[i+1:]...)
			break
		}
	}
	delete(fd.MetricConfigurations, id)
}
