// Package screen provides the built-in informational screens that
// rotate when no pushed content is active, plus the registry the
// resolver polls on every tick.
package screen

import (
	"time"

	"vfdd/frame"
)

// Provider yields one candidate frame when polled. Returning false
// skips the provider for this rotation slot; a provider never fails the
// whole resolution.
type Provider interface {
	Name() string
	Frame(now time.Time) (frame.Frame, bool)
}

// Registry is the ordered list of rotation providers.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Poll asks every provider for content and returns the frames of those
// that yielded, in registration order.
func (r *Registry) Poll(now time.Time) []frame.Frame {
	frames := make([]frame.Frame, 0, len(r.providers))
	for _, p := range r.providers {
		if f, ok := p.Frame(now); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Names returns the registered provider names, in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
