package provider

import (
	"sort"
	"time"

	"github.com/namancryu/TravelPMS/model"
)

// MockName is reported when no provider produced the response.
const MockName = "mock"

// Descriptor describes one provider in the fallback chain.
type Descriptor struct {
	Name     string
	Model    string
	Priority int // lower is tried first
	Endpoint string
	// APIKeyEnv names the credential that enables this provider. Empty means
	// always enabled.
	APIKeyEnv string
	// QuotaRetries is the number of extra attempts after a quota error.
	QuotaRetries int
	// RetryBackoff is multiplied by the attempt number between quota retries.
	RetryBackoff time.Duration
	Provider     model.Provider
}

// Status is the externally visible state of a provider.
type Status struct {
	Name     string `json:"name"`
	Model    string `json:"model"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
}

// Registry is the read-only, priority-sorted provider list.
type Registry struct {
	descriptors []Descriptor
	creds       Credentials
}

// NewRegistry sorts descriptors once by priority; ties keep their order.
func NewRegistry(creds Credentials, descriptors ...Descriptor) *Registry {
	if creds == nil {
		creds = EnvCredentials{}
	}
	sorted := append([]Descriptor(nil), descriptors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	return &Registry{descriptors: sorted, creds: creds}
}

// Enabled reports whether d can be called right now.
func (r *Registry) Enabled(d Descriptor) bool {
	if d.Provider == nil {
		return false
	}
	if d.APIKeyEnv == "" {
		return true
	}
	_, ok := r.creds.Lookup(d.APIKeyEnv)
	return ok
}

// Key returns the current credential for d.
func (r *Registry) Key(d Descriptor) string {
	if d.APIKeyEnv == "" {
		return ""
	}
	v, _ := r.creds.Lookup(d.APIKeyEnv)
	return v
}

// Available returns the enabled providers in priority order.
func (r *Registry) Available() []Descriptor {
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if r.Enabled(d) {
			out = append(out, d)
		}
	}
	return out
}

// All returns every registered provider in priority order.
func (r *Registry) All() []Descriptor {
	return append([]Descriptor(nil), r.descriptors...)
}

// Status reports every provider with its current availability.
func (r *Registry) Status() []Status {
	out := make([]Status, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, Status{Name: d.Name, Model: d.Model, Priority: d.Priority, Enabled: r.Enabled(d)})
	}
	return out
}

// ActiveProvider is the name of the provider a call would try first, or
// MockName when none is enabled.
func (r *Registry) ActiveProvider() string {
	for _, d := range r.descriptors {
		if r.Enabled(d) {
			return d.Name
		}
	}
	return MockName
}
