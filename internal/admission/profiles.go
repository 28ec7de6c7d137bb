// Package admission implements sliding-window rate limiting for the mutating
// and AI-backed operations of the product.
package admission

import "time"

// Profile names known to the default registry.
const (
	ProfileDefault     = "default"
	ProfileStrict      = "strict"
	ProfileAI          = "ai"
	ProfileExport      = "export"
	ProfileReport      = "report"
	ProfileInvite      = "invite"
	ProfileIntegration = "integration"
)

// Profile pairs a window capacity with a window length.
type Profile struct {
	Name     string
	Capacity int
	Window   time.Duration
}

// Registry maps profile names to their limits. It is built once at process
// start and injected; nothing mutates it afterwards.
type Registry map[string]Profile

// DefaultRegistry returns the product's standard limiter table: a
// general-purpose profile, a strict profile for sensitive mutations, an
// AI-operation profile, and four narrower per-feature profiles.
func DefaultRegistry() Registry {
	profiles := []Profile{
		{Name: ProfileDefault, Capacity: 100, Window: time.Minute},
		{Name: ProfileStrict, Capacity: 20, Window: time.Minute},
		{Name: ProfileAI, Capacity: 10, Window: time.Minute},
		{Name: ProfileExport, Capacity: 5, Window: time.Hour},
		{Name: ProfileReport, Capacity: 10, Window: time.Hour},
		{Name: ProfileInvite, Capacity: 20, Window: time.Hour},
		{Name: ProfileIntegration, Capacity: 30, Window: time.Hour},
	}
	r := make(Registry, len(profiles))
	for _, p := range profiles {
		r[p.Name] = p
	}
	return r
}
