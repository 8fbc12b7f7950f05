// Package roles owns the model configurations of a wizard session and the
// role invariant over them: at most one configuration produces target outputs
// and at most one generates prompt variants, with a single dual-role
// configuration allowed to cover both. Every mutation goes through the Engine
// so the invariant can never be bypassed.
package roles

import (
	"github.com/weave-labs/promptwizard/providers"
)

// Role is the job a model configuration plays in an optimization run.
type Role string

const (
	// RoleTarget marks the model whose outputs are being optimized.
	RoleTarget Role = "target"

	// RoleOptimizer marks the model that generates prompt variants.
	RoleOptimizer Role = "optimizer"

	// RoleBoth marks a single model serving as both target and optimizer.
	RoleBoth Role = "both"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTarget, RoleOptimizer, RoleBoth:
		return true
	}
	return false
}

// CoversTarget reports whether the role occupies the target slot.
func (r Role) CoversTarget() bool {
	return r == RoleTarget || r == RoleBoth
}

// CoversOptimizer reports whether the role occupies the optimizer slot.
func (r Role) CoversOptimizer() bool {
	return r == RoleOptimizer || r == RoleBoth
}

// ConflictsWith reports whether two configurations could not hold these roles
// at the same time. Roles conflict when their covered slots overlap.
func (r Role) ConflictsWith(other Role) bool {
	return (r.CoversTarget() && other.CoversTarget()) ||
		(r.CoversOptimizer() && other.CoversOptimizer())
}

// ModelConfig is one provider/model assignment in the wizard.
type ModelConfig struct {
	ID          string  `json:"id"`
	ProviderID  string  `json:"provider_id" validate:"required"`
	ModelName   string  `json:"model_name"`
	APIBase     string  `json:"api_base,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
	Temperature float64 `json:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `json:"max_tokens" validate:"min=1"`
	Role        Role    `json:"role" validate:"required,role"`

	// Custom-provider fields; ignored for catalog providers.
	CustomProviderName string               `json:"custom_provider_name,omitempty"`
	ModelPrefix        string               `json:"model_prefix,omitempty"`
	AuthMethod         providers.AuthMethod `json:"auth_method,omitempty"`
	CustomHeaders      map[string]string    `json:"custom_headers,omitempty"`
}

// IsCustom reports whether the configuration uses a free-form provider.
func (mc *ModelConfig) IsCustom() bool {
	return mc.ProviderID == providers.Custom
}

// clone returns a deep copy of the configuration. The copy keeps the original
// ID; callers assign a fresh one when the copy is a new configuration.
func (mc *ModelConfig) clone() *ModelConfig {
	out := *mc
	if mc.CustomHeaders != nil {
		out.CustomHeaders = make(map[string]string, len(mc.CustomHeaders))
		for k, v := range mc.CustomHeaders {
			out.CustomHeaders[k] = v
		}
	}
	return &out
}

// RoleStatus summarizes which role slots are occupied.
type RoleStatus struct {
	HasTarget    bool `json:"has_target"`
	HasOptimizer bool `json:"has_optimizer"`
	HasBoth      bool `json:"has_both"`
}
