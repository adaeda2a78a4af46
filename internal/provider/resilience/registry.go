package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth represents the health status of an upstream provider.
type ProviderHealth struct {
	// Name is the provider identifier.
	Name string `json:"name"`

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State `json:"-"`

	// State is CircuitState rendered for API output.
	State string `json:"state"`

	// Requests and ConsecutiveFailures mirror the circuit breaker counts.
	Requests            uint32 `json:"requests"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`

	// LastSuccessAt is the timestamp of the last successful request.
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`

	// LastFailureAt is the timestamp of the last failed request.
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`

	// LastError is the most recent error message, if any.
	LastError string `json:"lastError,omitempty"`

	// StateChangedAt is when the circuit last changed state.
	StateChangedAt *time.Time `json:"stateChangedAt,omitempty"`
}

// IsDegraded returns true if the circuit is half-open.
func (h *ProviderHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the circuit is open.
func (h *ProviderHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks resilient clients and the outcome of their last requests.
// Callers that fall back to synthetic data still see the upstream as
// unhealthy here.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*registeredProvider
	now       func() time.Time

	stateMu      sync.Mutex
	stateChanges map[string]time.Time
}

type registeredProvider struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers:    make(map[string]*registeredProvider),
		now:          time.Now,
		stateChanges: make(map[string]time.Time),
	}
}

// Register adds a client to the registry, replacing any previous one
// with the same name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = &registeredProvider{client: client}
}

// RecordSuccess records a successful request for a provider.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := r.now()
		p.lastSuccessAt = &now
	}
}

// RecordFailure records a failed request for a provider.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := r.now()
		p.lastFailureAt = &now
		if err != nil {
			p.lastError = err.Error()
		}
	}
}

// RecordStateChange records a circuit breaker transition for a provider.
// The breaker calls it while holding its own lock, and Health reads breaker
// state while holding mu, so transitions are kept under the separate
// stateMu, which never has another lock taken inside it.
func (r *Registry) RecordStateChange(name string) {
	now := r.now()
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.stateChanges[name] = now
}

func (r *Registry) stateChangedAt(name string) *time.Time {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	t, ok := r.stateChanges[name]
	if !ok {
		return nil
	}
	return &t
}

// Health returns the health of one provider, or nil if it is not registered.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil
	}
	h := p.health(name)
	h.StateChangedAt = r.stateChangedAt(name)
	return h
}

// All returns the health of every registered provider ordered by name.
func (r *Registry) All() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*ProviderHealth, 0, len(r.providers))
	for name, p := range r.providers {
		h := p.health(name)
		h.StateChangedAt = r.stateChangedAt(name)
		health = append(health, h)
	}
	sort.Slice(health, func(i, j int) bool { return health[i].Name < health[j].Name })
	return health
}

func (p *registeredProvider) health(name string) *ProviderHealth {
	state := p.client.CircuitBreakerState()
	counts := p.client.CircuitBreakerCounts()
	return &ProviderHealth{
		Name:                name,
		CircuitState:        state,
		State:               state.String(),
		Requests:            counts.Requests,
		ConsecutiveFailures: counts.ConsecutiveFailures,
		LastSuccessAt:       p.lastSuccessAt,
		LastFailureAt:       p.lastFailureAt,
		LastError:           p.lastError,
	}
}
