package surface

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/touchsweep/utils"
)

// DefaultRegistrySize is the number of surfaces kept before the least
// recently used one is evicted.
const DefaultRegistrySize = 128

// Registry keeps live surfaces by id. It is bounded: when full, adding a
// surface evicts the least recently used one, which is unbound on the way out.
type Registry struct {
	cache *lru.Cache[string, *Surface]
}

// NewRegistry creates a registry holding at most size surfaces.
func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultRegistrySize
	}

	cache, err := lru.NewWithEvict(size, func(id string, s *Surface) {
		s.Unbind()
		utils.Verbose("Surface %s removed from registry", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create surface registry: %w", err)
	}

	return &Registry{cache: cache}, nil
}

// Add registers a surface. It reports whether another surface was evicted
// to make room.
func (r *Registry) Add(s *Surface) bool {
	return r.cache.Add(s.ID(), s)
}

// Get looks up a surface and marks it as recently used.
func (r *Registry) Get(id string) (*Surface, error) {
	if id == "" {
		return nil, fmt.Errorf("surface ID is required")
	}

	s, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Remove unbinds and drops a surface.
func (r *Registry) Remove(id string) error {
	if !r.cache.Remove(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns info for every surface, least recently used first.
func (r *Registry) List() []Info {
	surfaces := r.cache.Values()
	infos := make([]Info, 0, len(surfaces))
	for _, s := range surfaces {
		infos = append(infos, s.Info())
	}
	return infos
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// CleanupAll unbinds and drops every surface.
func (r *Registry) CleanupAll() {
	if r.cache.Len() == 0 {
		return
	}

	utils.Verbose("Cleaning up %d surface(s)", r.cache.Len())
	r.cache.Purge()
}
