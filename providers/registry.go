package providers

import (
	"sync"
)

// Registry manages the provider catalog. It is thread-safe and supports
// registering additional providers at runtime.
type Registry struct {
	configs map[string]ProviderConfig
	mutex   sync.RWMutex
}

// NewRegistry creates a registry preloaded with all known providers, or with
// only the named subset when provider names are given.
func NewRegistry(providerNames ...string) *Registry {
	registry := &Registry{
		configs: make(map[string]ProviderConfig),
	}

	known := knownProviders()

	if len(providerNames) == 0 {
		for name, cfg := range known {
			registry.configs[name] = cfg
		}
	} else {
		for _, name := range providerNames {
			if cfg, ok := known[name]; ok {
				registry.configs[name] = cfg
			}
		}
	}

	return registry
}

// knownProviders returns the built-in provider catalog.
func knownProviders() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"openai": {
			Name:           "openai",
			DisplayName:    "OpenAI",
			APIBase:        "https://api.openai.com/v1",
			RequiresAPIKey: true,
			DefaultModel:   "gpt-4o-mini",
			Models: []string{
				"gpt-4o",
				"gpt-4o-mini",
				"gpt-4-turbo",
				"gpt-3.5-turbo",
			},
		},
		"anthropic": {
			Name:           "anthropic",
			DisplayName:    "Anthropic",
			APIBase:        "https://api.anthropic.com/v1",
			RequiresAPIKey: true,
			DefaultModel:   "claude-3.5-haiku",
			Models: []string{
				"claude-3.5-sonnet",
				"claude-3.5-haiku",
				"claude-3-opus",
			},
		},
		"groq": {
			Name:           "groq",
			DisplayName:    "Groq",
			APIBase:        "https://api.groq.com/openai/v1",
			RequiresAPIKey: true,
			DefaultModel:   "llama-3.1-8b-instant",
			Models: []string{
				"llama-3.1-70b-versatile",
				"llama-3.1-8b-instant",
				"mixtral-8x7b-32768",
			},
		},
		"mistral": {
			Name:           "mistral",
			DisplayName:    "Mistral",
			APIBase:        "https://api.mistral.ai/v1",
			RequiresAPIKey: true,
			DefaultModel:   "mistral-small-latest",
			Models: []string{
				"mistral-large-latest",
				"mistral-small-latest",
				"open-mistral-nemo",
			},
		},
		"deepseek": {
			Name:           "deepseek",
			DisplayName:    "DeepSeek",
			APIBase:        "https://api.deepseek.com",
			RequiresAPIKey: true,
			DefaultModel:   "deepseek-chat",
			Models: []string{
				"deepseek-chat",
				"deepseek-reasoner",
			},
		},
		"ollama": {
			Name:           "ollama",
			DisplayName:    "Ollama",
			APIBase:        "http://localhost:11434",
			RequiresAPIKey: false,
			DefaultModel:   "llama3.1",
			Models: []string{
				"llama3.1",
				"llama3.1:70b",
				"mistral",
				"qwen2.5",
			},
		},
	}
}

// Get returns the configuration for a named provider.
func (r *Registry) Get(name string) (ProviderConfig, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	cfg, exists := r.configs[name]
	return cfg, exists
}

// Register adds or replaces a provider configuration. This is thread-safe and
// can be used to extend the catalog at runtime.
func (r *Registry) Register(cfg ProviderConfig) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.configs[cfg.Name] = cfg
}

// Names returns the registered provider names. Order is unspecified.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}

// IsKnown reports whether the name is a registered provider. The custom
// provider ID is never "known": it deliberately has no catalog entry.
func (r *Registry) IsKnown(name string) bool {
	_, ok := r.Get(name)
	return ok
}
