package roles

import (
	"github.com/google/uuid"

	"github.com/weave-labs/promptwizard/providers"
	"github.com/weave-labs/promptwizard/utils"
)

// Creation defaults for new configurations. Model and endpoint come from the
// provider catalog; these cover the sampling parameters.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// Engine maintains the ordered set of model configurations and enforces the
// role invariant. It keeps a flat list and recomputes conflicts on demand,
// which keeps Split and Merge simple: they replace entries wholesale instead
// of juggling role-indexed maps.
//
// The engine is synchronous and not safe for concurrent use; one wizard
// session owns one engine.
type Engine struct {
	registry *providers.Registry
	configs  []*ModelConfig
	logger   utils.Logger
}

// NewEngine creates an engine backed by the given provider catalog. A nil
// logger falls back to a WARN-level default.
func NewEngine(registry *providers.Registry, logger utils.Logger) *Engine {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelWarn)
	}
	return &Engine{
		registry: registry,
		logger:   logger,
	}
}

// Configs returns the configurations in insertion order. The slice is a copy;
// the pointed-to configurations are live and mutate with the engine.
func (e *Engine) Configs() []*ModelConfig {
	out := make([]*ModelConfig, len(e.configs))
	copy(out, e.configs)
	return out
}

// Get returns the configuration with the given ID.
func (e *Engine) Get(id string) (*ModelConfig, bool) {
	for _, cfg := range e.configs {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return nil, false
}

// AddConfig appends a new configuration with provider defaults. It fails with
// a RoleConflict when the requested role overlaps one already held.
func (e *Engine) AddConfig(providerID string, role Role) (*ModelConfig, error) {
	if !role.Valid() {
		return nil, newRoleError(ErrorKindInvalidOperation, "invalid role %q", role)
	}
	if err := e.checkConflict(role, ""); err != nil {
		return nil, err
	}

	cfg := &ModelConfig{
		ID:          uuid.NewString(),
		ProviderID:  providerID,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Role:        role,
	}
	if pc, ok := e.registry.Get(providerID); ok {
		cfg.ModelName = pc.DefaultModel
		cfg.APIBase = pc.APIBase
	}
	if cfg.ProviderID == providers.Custom {
		cfg.AuthMethod = providers.AuthAPIKey
		cfg.CustomHeaders = make(map[string]string)
	}

	e.configs = append(e.configs, cfg)
	e.logger.Debug("model configuration added", "id", cfg.ID, "provider", providerID, "role", role)
	return cfg, nil
}

// RemoveConfig removes the configuration with the given ID. Removing an
// unknown ID is a no-op.
func (e *Engine) RemoveConfig(id string) {
	for i, cfg := range e.configs {
		if cfg.ID == id {
			e.configs = append(e.configs[:i], e.configs[i+1:]...)
			e.logger.Debug("model configuration removed", "id", id)
			return
		}
	}
}

// ChangeRole mutates the configuration's role in place. It fails with a
// RoleConflict when another configuration holds an overlapping role.
func (e *Engine) ChangeRole(id string, newRole Role) error {
	cfg, ok := e.Get(id)
	if !ok {
		return newRoleError(ErrorKindNotFound, "no configuration with id %s", id)
	}
	if !newRole.Valid() {
		return newRoleError(ErrorKindInvalidOperation, "invalid role %q", newRole)
	}
	if err := e.checkConflict(newRole, id); err != nil {
		return err
	}
	cfg.Role = newRole
	return nil
}

// AvailableRoles returns the roles ChangeRole would currently accept for the
// configuration. It shares checkConflict with ChangeRole, so the two cannot
// drift apart.
func (e *Engine) AvailableRoles(id string) []Role {
	if _, ok := e.Get(id); !ok {
		return nil
	}
	var available []Role
	for _, role := range []Role{RoleTarget, RoleOptimizer, RoleBoth} {
		if e.checkConflict(role, id) == nil {
			available = append(available, role)
		}
	}
	return available
}

// Split replaces a dual-role configuration with two single-role ones. The
// target half keeps the original model; the optimizer half gets the
// provider's higher-capability model when the catalog lists one, falling back
// to the original model name. Both halves get fresh IDs.
func (e *Engine) Split(id string) (target, optimizer *ModelConfig, err error) {
	idx := -1
	for i, cfg := range e.configs {
		if cfg.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil, newRoleError(ErrorKindNotFound, "no configuration with id %s", id)
	}
	original := e.configs[idx]
	if original.Role != RoleBoth {
		return nil, nil, newRoleError(ErrorKindInvalidOperation,
			"configuration %s has role %q, only a dual-role configuration can be split", id, original.Role)
	}

	target = original.clone()
	target.ID = uuid.NewString()
	target.Role = RoleTarget

	optimizer = original.clone()
	optimizer.ID = uuid.NewString()
	optimizer.Role = RoleOptimizer
	if pc, ok := e.registry.Get(original.ProviderID); ok {
		if model, found := pc.HigherCapabilityModel(); found {
			optimizer.ModelName = model
		}
	}

	replaced := make([]*ModelConfig, 0, len(e.configs)+1)
	replaced = append(replaced, e.configs[:idx]...)
	replaced = append(replaced, target, optimizer)
	replaced = append(replaced, e.configs[idx+1:]...)
	e.configs = replaced

	e.logger.Debug("configuration split",
		"original", id, "target", target.ID, "optimizer", optimizer.ID,
		"optimizer_model", optimizer.ModelName)
	return target, optimizer, nil
}

// Merge collapses the target and optimizer configurations sharing the given
// provider into a single dual-role configuration. The result preserves the
// target configuration's field values and gets a fresh ID.
func (e *Engine) Merge(providerID string) (*ModelConfig, error) {
	var target, optimizer *ModelConfig
	targetIdx := -1
	for i, cfg := range e.configs {
		if cfg.ProviderID != providerID {
			continue
		}
		switch cfg.Role {
		case RoleTarget:
			target = cfg
			targetIdx = i
		case RoleOptimizer:
			optimizer = cfg
		}
	}
	if target == nil || optimizer == nil {
		return nil, newRoleError(ErrorKindInvalidOperation,
			"merge requires one target and one optimizer configuration on provider %q", providerID)
	}

	merged := target.clone()
	merged.ID = uuid.NewString()
	merged.Role = RoleBoth

	remaining := make([]*ModelConfig, 0, len(e.configs)-1)
	for i, cfg := range e.configs {
		switch {
		case i == targetIdx:
			remaining = append(remaining, merged)
		case cfg == optimizer:
			// dropped
		default:
			remaining = append(remaining, cfg)
		}
	}
	e.configs = remaining

	e.logger.Debug("configurations merged", "provider", providerID, "merged", merged.ID)
	return merged, nil
}

// RoleStatus reports which role slots are occupied, computed by scanning the
// set. Pure; no side effects.
func (e *Engine) RoleStatus() RoleStatus {
	var status RoleStatus
	for _, cfg := range e.configs {
		switch cfg.Role {
		case RoleTarget:
			status.HasTarget = true
		case RoleOptimizer:
			status.HasOptimizer = true
		case RoleBoth:
			status.HasBoth = true
		}
	}
	return status
}

// checkConflict is the single invariant gate: it rejects a role when any
// configuration other than excludeID holds an overlapping one. All mutation
// entry points funnel through it.
func (e *Engine) checkConflict(role Role, excludeID string) error {
	for _, cfg := range e.configs {
		if cfg.ID == excludeID {
			continue
		}
		if role.ConflictsWith(cfg.Role) {
			return newRoleError(ErrorKindRoleConflict,
				"role %q conflicts with configuration %s holding role %q", role, cfg.ID, cfg.Role)
		}
	}
	return nil
}
