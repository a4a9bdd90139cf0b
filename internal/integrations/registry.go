package integrations

import (
	"fmt"
	"sync"
)

// RegistryInterface holds the telephony providers known to the process and which one serves requests.
type RegistryInterface interface {
	// Register adds a provider under its Name().
	Register(provider TelephonyProvider) error

	// Get returns the provider registered under name.
	Get(name string) (TelephonyProvider, error)

	// SetActive selects the provider that serves requests.
	SetActive(name string) error

	// GetActive returns the selected provider.
	GetActive() (TelephonyProvider, error)
}

// Registry is filled once during startup and only read afterwards.
type Registry struct {
	providers map[string]TelephonyProvider
	active    string
	mu        sync.RWMutex
}

func NewRegistry() RegistryInterface {
	return &Registry{
		providers: make(map[string]TelephonyProvider),
	}
}

func (r *Registry) Register(provider TelephonyProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("telephony provider '%s' is already registered", name)
	}

	r.providers[name] = provider
	return nil
}

func (r *Registry) Get(name string) (TelephonyProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("telephony provider '%s' not found", name)
	}
	return provider, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("cannot activate telephony provider '%s': not registered", name)
	}

	r.active = name
	return nil
}

func (r *Registry) GetActive() (TelephonyProvider, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, fmt.Errorf("no active telephony provider")
	}

	return r.Get(activeName)
}
