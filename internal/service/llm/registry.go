package llm

import (
	"fmt"
	"sync"

	domainllm "dharmabot/internal/domain/services/llm"
)

// ProviderRegistry manages LLM providers and routes model requests to the appropriate provider.
// Uses ModelParser to extract provider from model string, then ProviderFactory to create instances.
type ProviderRegistry struct {
	factory *ProviderFactory
	cache   map[string]domainllm.LLMProvider // Cache provider instances
	mu      sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory *ProviderFactory) *ProviderRegistry {
	return &ProviderRegistry{
		factory: factory,
		cache:   make(map[string]domainllm.LLMProvider),
	}
}

// GetProvider returns the provider for the given provider name, creating
// and caching it on first use.
func (r *ProviderRegistry) GetProvider(provider string) (domainllm.LLMProvider, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: check cache with read lock (optimistic path for cache hits)
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	// Slow path: create provider with write lock (prevents race conditions)
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check cache after acquiring write lock
	// Another goroutine may have created the provider while we waited for the lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	instance, err := r.factory.GetProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
	}

	r.cache[provider] = instance

	return instance, nil
}

// ResolveModel parses a model string and returns its provider together with
// the provider-local model ID.
func (r *ProviderRegistry) ResolveModel(model string) (domainllm.LLMProvider, *ModelInfo, error) {
	info, err := ParseModel(model)
	if err != nil {
		return nil, nil, err
	}

	provider, err := r.GetProvider(info.Provider)
	if err != nil {
		return nil, nil, err
	}

	if !provider.SupportsModel(info.Model) {
		return nil, nil, fmt.Errorf("model '%s' is not supported by provider '%s'", info.Model, info.Provider)
	}

	return provider, info, nil
}

// Validate checks if the factory is properly configured.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	if r.factory == nil {
		return fmt.Errorf("provider factory is not configured")
	}
	return nil
}
