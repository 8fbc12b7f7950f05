// Package providers defines the catalog of inference providers the wizard can
// assign to model roles. Each catalog entry carries the provider's API
// defaults, its known model list, and whether it needs an API key. Free-form
// custom providers are supported through the AuthMethod variants.
package providers

import "strings"

// AuthMethod describes how a custom provider authenticates.
type AuthMethod string

const (
	AuthAPIKey        AuthMethod = "api_key"
	AuthBearerToken   AuthMethod = "bearer_token"
	AuthCustomHeaders AuthMethod = "custom_headers"
)

func (a AuthMethod) Valid() bool {
	switch a {
	case AuthAPIKey, AuthBearerToken, AuthCustomHeaders:
		return true
	}
	return false
}

// Custom is the reserved provider ID for user-defined providers. Custom
// providers have no catalog entry; their endpoint and auth come from the
// model configuration itself.
const Custom = "custom"

// ProviderConfig is one catalog entry.
type ProviderConfig struct {
	// Name is the provider identifier used throughout the wizard.
	Name string

	// DisplayName is the human-readable label.
	DisplayName string

	// APIBase is the default API endpoint.
	APIBase string

	// RequiresAPIKey reports whether a configuration for this provider is
	// incomplete without auth material.
	RequiresAPIKey bool

	// DefaultModel is the model preselected when a configuration is created.
	DefaultModel string

	// Models is the provider's known model list, in the provider's declared
	// order. The order matters: the split heuristic takes the first match.
	Models []string
}

// higherCapabilityMarkers are the name fragments treated as signals of a more
// capable model when splitting a dual-role configuration. First match in the
// provider's declared model list wins; the ordering among multiple matches is
// arbitrary, not a quality ranking.
var higherCapabilityMarkers = []string{"claude-3.5", "gpt-4", "70b"}

// HigherCapabilityModel scans the provider's model list for a name matching
// one of the higher-capability markers. The boolean reports whether a match
// was found.
func (pc ProviderConfig) HigherCapabilityModel() (string, bool) {
	for _, model := range pc.Models {
		lower := strings.ToLower(model)
		for _, marker := range higherCapabilityMarkers {
			if strings.Contains(lower, marker) {
				return model, true
			}
		}
	}
	return "", false
}
