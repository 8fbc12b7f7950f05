package wizard

import (
	"fmt"
	"strings"

	"github.com/weave-labs/promptwizard/providers"
	"github.com/weave-labs/promptwizard/roles"
)

// Section identifies one logical section of the wizard form.
type Section string

const (
	SectionPrompt       Section = "prompt"
	SectionUseCase      Section = "usecase"
	SectionDataset      Section = "dataset"
	SectionFieldMapping Section = "fieldmapping"
	SectionMetrics      Section = "metrics"
	SectionModels       Section = "models"
	SectionOptimizer    Section = "optimizer"
)

// Sections lists every section in display order. MissingRequirements reports
// in this order.
var Sections = []Section{
	SectionPrompt,
	SectionUseCase,
	SectionDataset,
	SectionFieldMapping,
	SectionMetrics,
	SectionModels,
	SectionOptimizer,
}

// SectionStatus is the completion state of one form section.
type SectionStatus int

const (
	StatusEmpty SectionStatus = iota
	StatusIncomplete
	StatusComplete
)

func (s SectionStatus) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusIncomplete:
		return "incomplete"
	default:
		return "empty"
	}
}

// Validator derives section statuses and submit-readiness from a FormData.
// All methods are pure: no side effects, no network access.
type Validator struct {
	registry *providers.Registry
}

func NewValidator(registry *providers.Registry) *Validator {
	return &Validator{registry: registry}
}

// SectionStatus returns the completion state of one section.
func (v *Validator) SectionStatus(section Section, fd *FormData) SectionStatus {
	switch section {
	case SectionPrompt:
		if strings.TrimSpace(fd.Prompt) != "" {
			return StatusComplete
		}
		return StatusEmpty

	case SectionUseCase:
		if fd.UseCase.Valid() {
			return StatusComplete
		}
		return StatusEmpty

	case SectionDataset:
		if fd.DatasetPath != "" {
			return StatusComplete
		}
		return StatusEmpty

	case SectionFieldMapping:
		if fd.UseCase == UseCaseCustom {
			return StatusComplete
		}
		if fd.DatasetPath == "" {
			return StatusEmpty
		}
		if len(v.missingFields(fd)) > 0 {
			return StatusIncomplete
		}
		return StatusComplete

	case SectionMetrics:
		if len(fd.Metrics) > 0 {
			return StatusComplete
		}
		return StatusEmpty

	case SectionModels:
		if len(fd.ModelConfigs) == 0 {
			return StatusEmpty
		}
		for _, cfg := range fd.ModelConfigs {
			if !v.modelConfigComplete(cfg) {
				return StatusIncomplete
			}
		}
		return StatusComplete

	case SectionOptimizer:
		if fd.SelectedOptimizer != "" {
			return StatusComplete
		}
		return StatusEmpty
	}
	return StatusEmpty
}

// IsReadyToSubmit reports whether every section is complete and the model
// role slots are covered. It is defined as MissingRequirements returning
// nothing, so the boolean gate and the displayed checklist cannot drift.
func (v *Validator) IsReadyToSubmit(fd *FormData) bool {
	return len(v.MissingRequirements(fd)) == 0
}

// MissingRequirements returns one human-readable reason per failing rule, in
// fixed section order with the model-role cross-check after the models
// section.
func (v *Validator) MissingRequirements(fd *FormData) []string {
	var missing []string

	if v.SectionStatus(SectionPrompt, fd) != StatusComplete {
		missing = append(missing, "prompt is empty")
	}
	if v.SectionStatus(SectionUseCase, fd) != StatusComplete {
		missing = append(missing, "no use case selected")
	}
	if v.SectionStatus(SectionDataset, fd) != StatusComplete {
		missing = append(missing, "no dataset uploaded")
	}
	if v.SectionStatus(SectionFieldMapping, fd) != StatusComplete {
		if fields := v.missingFields(fd); len(fields) > 0 {
			missing = append(missing, fmt.Sprintf("field mappings missing for: %s", strings.Join(fields, ", ")))
		} else {
			missing = append(missing, "field mappings not configured")
		}
	}
	if v.SectionStatus(SectionMetrics, fd) != StatusComplete {
		missing = append(missing, "no evaluation metrics selected")
	}
	switch v.SectionStatus(SectionModels, fd) {
	case StatusEmpty:
		missing = append(missing, "no model configured")
	case StatusIncomplete:
		missing = append(missing, "a model configuration is missing its model name or API key")
	}
	if !v.rolesCovered(fd) {
		missing = append(missing, "model roles incomplete: need a target and an optimizer, or one model serving both")
	}
	if v.SectionStatus(SectionOptimizer, fd) != StatusComplete {
		missing = append(missing, "no optimizer selected")
	}

	return missing
}

// missingFields lists the required target fields without a non-empty mapping,
// in the use case's declared order.
func (v *Validator) missingFields(fd *FormData) []string {
	var missing []string
	for _, field := range fd.UseCase.RequiredFields() {
		if strings.TrimSpace(fd.FieldMappings[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// modelConfigComplete checks the models-section rule for one configuration:
// non-blank model name, plus auth material when the provider needs it.
func (v *Validator) modelConfigComplete(cfg *roles.ModelConfig) bool {
	if strings.TrimSpace(cfg.ModelName) == "" {
		return false
	}
	if cfg.IsCustom() {
		switch cfg.AuthMethod {
		case providers.AuthCustomHeaders:
			return len(cfg.CustomHeaders) > 0
		default:
			return strings.TrimSpace(cfg.APIKey) != ""
		}
	}
	pc, known := v.registry.Get(cfg.ProviderID)
	if known && !pc.RequiresAPIKey {
		return true
	}
	return strings.TrimSpace(cfg.APIKey) != ""
}

// rolesCovered is the cross-check gating submission: either one dual-role
// configuration, or both single-role slots occupied.
func (v *Validator) rolesCovered(fd *FormData) bool {
	var hasTarget, hasOptimizer bool
	for _, cfg := range fd.ModelConfigs {
		if cfg.Role.CoversTarget() {
			hasTarget = true
		}
		if cfg.Role.CoversOptimizer() {
			hasOptimizer = true
		}
	}
	return hasTarget && hasOptimizer
}
