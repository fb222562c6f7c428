package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

// Click is an interaction with a posted component.
type Click struct {
	Actor
	ComponentID string
}

type ComponentHandler func(ctx context.Context, c Click) (domain.Response, error)

// ComponentRegistry resolves a widget's custom id to its handler. It is filled
// once at startup and sealed; the same registration calls on the next start
// make ids captured in old messages resolvable again.
type ComponentRegistry struct {
	mu      sync.RWMutex
	entries map[string]ComponentHandler
	sealed  bool
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{entries: make(map[string]ComponentHandler)}
}

func (r *ComponentRegistry) Register(desc domain.ComponentDescriptor, h ComponentHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: %s", domain.ErrRegistrySealed, desc.ID)
	}
	if desc.ID == "" {
		return fmt.Errorf("component with action %q has no id", desc.Action)
	}
	if _, dup := r.entries[desc.ID]; dup {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateComponent, desc.ID)
	}
	r.entries[desc.ID] = h
	return nil
}

// Seal rejects further registrations.
func (r *ComponentRegistry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *ComponentRegistry) Resolve(id string) (ComponentHandler, error) {
	r.mu.RLock()
	h, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrComponentNotFound, id)
	}
	return h, nil
}

func (r *ComponentRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
