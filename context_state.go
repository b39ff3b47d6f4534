package shaderres

import (
	"errors"
	"sync"
	"time"

	"github.com/gogpu/shaderres/deletion"
)

// ContextState is the render-time state of one graphics context. It
// implements State, compiles the shaders drawn in the context, and drives
// deferred deletion for it.
//
// A ContextState belongs to the goroutine that owns the context.
type ContextState struct {
	id       ContextID
	driver   Driver
	registry *deletion.Registry

	mu      sync.Mutex
	shaders map[*Shader]struct{}
}

// NewContextState creates the state for context id. registry is the
// deletion registry shaders release into; nil means deletion.Default().
func NewContextState(id ContextID, driver Driver, registry *deletion.Registry) *ContextState {
	if registry == nil {
		registry = deletion.Default()
	}
	return &ContextState{
		id:       id,
		driver:   driver,
		registry: registry,
		shaders:  make(map[*Shader]struct{}),
	}
}

// ContextID implements State.
func (cs *ContextState) ContextID() ContextID { return cs.id }

// Driver implements State.
func (cs *ContextState) Driver() Driver { return cs.driver }

// Compile compiles each shader that needs it in this context. Every
// shader is attempted; the failures are joined into the returned error.
func (cs *ContextState) Compile(shaders ...*Shader) error {
	var errs []error
	for _, s := range shaders {
		if !s.NeedsCompile(cs.id) {
			cs.track(s)
			continue
		}
		if err := s.Compile(cs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (cs *ContextState) track(s *Shader) {
	cs.mu.Lock()
	cs.shaders[s] = struct{}{}
	cs.mu.Unlock()
}

// Flush deletes handles queued for this context until budget is spent and
// returns what is left of it. Call it once per frame.
func (cs *ContextState) Flush(budget time.Duration) time.Duration {
	return cs.registry.Flush(cs.id, cs.driver, budget)
}

// Close tears the context down: every shader compiled through this state
// drops its object for the context and the queued handles are discarded
// without GPU calls. Handles created in the context before Close are never
// queued again, even if its id is reused. Call it after the context itself
// has been destroyed.
func (cs *ContextState) Close() error {
	cs.mu.Lock()
	shaders := cs.shaders
	cs.shaders = make(map[*Shader]struct{})
	cs.mu.Unlock()

	registries := map[*deletion.Registry]struct{}{cs.registry: {}}
	for s := range shaders {
		s.Release(cs.id)
		registries[s.registry] = struct{}{}
	}
	n := 0
	for r := range registries {
		n += r.Discard(cs.id)
	}
	Logger().Info("shaderres: context closed", "context", cs.id, "shaders", len(shaders), "discarded", n)
	return nil
}
