package shaderres

import (
	"fmt"
	"sync"

	"github.com/gogpu/shaderres/gpucore"
)

// CompileState is the compile state of a PerContext.
type CompileState uint8

const (
	// Uncompiled is the initial state: no handle, compile pending.
	Uncompiled CompileState = iota

	// Dirty means a (re)compile was requested.
	Dirty

	// Compiling is held while a compile is in flight.
	Compiling

	// Compiled means the handle is valid and up to date.
	Compiled

	// CompileFailed means the last attempt failed; see InfoLog.
	CompileFailed
)

// String returns the state name.
func (s CompileState) String() string {
	switch s {
	case Uncompiled:
		return "Uncompiled"
	case Dirty:
		return "Dirty"
	case Compiling:
		return "Compiling"
	case Compiled:
		return "Compiled"
	case CompileFailed:
		return "CompileFailed"
	default:
		return fmt.Sprintf("CompileState(%d)", s)
	}
}

func (s CompileState) needsCompile() bool {
	return s == Uncompiled || s == Dirty
}

// PerContext is the compiled form of a Shader in one graphics context.
// There is at most one PerContext per (Shader, context) pair; get it with
// Shader.GetOrCreatePerContext.
//
// Compile, Attach and Detach must be called from the goroutine owning the
// context. RequestCompile may be called from anywhere.
type PerContext struct {
	shader *Shader
	id     ContextID

	mu      sync.Mutex
	handle  gpucore.ShaderHandle
	gen     uint64 // deletion generation of handle's context
	state   CompileState
	log     string
	lastErr error

	// released is set once the object has been dropped from its shader.
	// A compile finishing after that must not install its handle.
	released bool
}

func newPerContext(s *Shader, id ContextID) *PerContext {
	return &PerContext{shader: s, id: id}
}

// ContextID returns the context this object belongs to.
func (pc *PerContext) ContextID() ContextID { return pc.id }

// Handle returns the current GPU handle, or gpucore.InvalidID.
func (pc *PerContext) Handle() gpucore.ShaderHandle {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.handle
}

// State returns the compile state.
func (pc *PerContext) State() CompileState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.state
}

// NeedsCompile reports whether the next Compile will do work.
func (pc *PerContext) NeedsCompile() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.state.needsCompile()
}

// IsCompiled reports whether the handle is valid and up to date.
func (pc *PerContext) IsCompiled() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.state == Compiled
}

// InfoLog returns the diagnostics of the last compile attempt. It is kept
// until the next attempt replaces it.
func (pc *PerContext) InfoLog() string {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.log
}

// Err returns the error of the last compile attempt, or nil.
func (pc *PerContext) Err() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.lastErr
}

// RequestCompile marks the object dirty. It never calls the GPU.
func (pc *PerContext) RequestCompile() {
	pc.mu.Lock()
	pc.state = Dirty
	pc.mu.Unlock()
}

// Compile compiles the shader with d if a compile is pending, and does
// nothing otherwise. A binary payload takes precedence over source text.
//
// On a compile error the object moves to CompileFailed, its handle is
// released and the returned *CompileError carries the log. If the source
// cannot be composed (ErrMalformedSource) the compile is aborted and the
// previous handle, if any, stays in place. Failed objects are not retried
// until RequestCompile is called again.
//
// If the object is released while the compile is in flight, the new handle
// is queued for deletion instead of being installed. Compiling a released
// object does nothing.
func (pc *PerContext) Compile(d Driver) error {
	pc.mu.Lock()
	if pc.released || !pc.state.needsCompile() {
		pc.mu.Unlock()
		return nil
	}
	pc.state = Compiling
	pc.mu.Unlock()

	gen := pc.shader.registry.Generation(pc.id)

	in, err := pc.shader.compileInput()
	if err != nil {
		pc.finish(func() {
			pc.log = err.Error()
			pc.lastErr = err
		})
		Logger().Warn("shaderres: compile aborted",
			"shader", in.name, "context", pc.id, "err", err)
		return fmt.Errorf("shaderres: compile %s in %s: %w", in.name, pc.id, err)
	}

	var (
		h   gpucore.ShaderHandle
		log string
	)
	if in.binary != nil {
		h, log, err = d.LoadBinary(in.kind, in.binary.Bytes(), in.name)
	} else {
		h, log, err = d.CompileSource(in.kind, in.source, in.name)
	}

	if err != nil {
		cerr := &CompileError{Name: in.name, Kind: in.kind, Context: pc.id, Log: log, Err: err}
		var (
			old    gpucore.ShaderHandle
			oldGen uint64
		)
		pc.finish(func() {
			old, oldGen = pc.handle, pc.gen
			pc.handle = gpucore.InvalidID
			pc.log = log
			pc.lastErr = cerr
		})
		pc.shader.enqueueDelete(pc.id, oldGen, old)
		pc.shader.enqueueDelete(pc.id, gen, h)
		Logger().Warn("shaderres: compile failed",
			"shader", in.name, "kind", in.kind, "context", pc.id, "log", log)
		return cerr
	}

	var (
		old      gpucore.ShaderHandle
		oldGen   uint64
		orphaned bool
	)
	pc.finish(func() {
		if pc.released {
			orphaned = true
			return
		}
		old, oldGen = pc.handle, pc.gen
		pc.handle, pc.gen = h, gen
		pc.log = log
		pc.lastErr = nil
	})
	if orphaned {
		pc.shader.enqueueDelete(pc.id, gen, h)
		Logger().Debug("shaderres: released during compile",
			"shader", in.name, "context", pc.id, "handle", h)
		return nil
	}
	if old != h || oldGen != gen {
		pc.shader.enqueueDelete(pc.id, oldGen, old)
	}
	Logger().Debug("shaderres: compiled",
		"shader", in.name, "kind", in.kind, "context", pc.id, "handle", h, "binary", in.binary != nil)
	return nil
}

// finish applies update and settles the state after a compile attempt.
// A RequestCompile that raced with the compile wins: the state stays Dirty.
func (pc *PerContext) finish(update func()) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	update()
	if pc.state != Compiling {
		return
	}
	if pc.lastErr != nil {
		pc.state = CompileFailed
	} else {
		pc.state = Compiled
	}
}

// Attach attaches the compiled shader to program. It fails with
// ErrNotCompiled while there is no valid handle.
func (pc *PerContext) Attach(d Driver, program gpucore.ProgramHandle) error {
	h := pc.Handle()
	if !h.Valid() {
		return fmt.Errorf("shaderres: attach %s in %s: %w", pc.shader.Name(), pc.id, ErrNotCompiled)
	}
	return d.AttachShader(program, h)
}

// Detach detaches the compiled shader from program. It fails with
// ErrNotCompiled while there is no valid handle.
func (pc *PerContext) Detach(d Driver, program gpucore.ProgramHandle) error {
	h := pc.Handle()
	if !h.Valid() {
		return fmt.Errorf("shaderres: detach %s in %s: %w", pc.shader.Name(), pc.id, ErrNotCompiled)
	}
	return d.DetachShader(program, h)
}

// release hands the handle to the deletion registry and resets the object.
// The object is dead afterwards; the shader creates a fresh one on demand.
// Safe to call from any goroutine, including during Compile.
func (pc *PerContext) release() {
	pc.mu.Lock()
	h, gen := pc.handle, pc.gen
	pc.handle = gpucore.InvalidID
	pc.state = Uncompiled
	pc.log = ""
	pc.lastErr = nil
	pc.released = true
	pc.mu.Unlock()
	pc.shader.enqueueDelete(pc.id, gen, h)
}
