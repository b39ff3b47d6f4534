package shaderres

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/shaderres/compose"
	"github.com/gogpu/shaderres/deletion"
	"github.com/gogpu/shaderres/gpucore"
)

// Shader is one logical shader shared by any number of graphics contexts.
//
// The shader owns its source text, optional binary payload and injection
// list, plus one PerContext per context that has used it. Source and
// binary may both be set; a binary, when present, is what gets compiled.
//
// All methods are safe for concurrent use. Methods that take a State or a
// Driver follow the threading rules of PerContext.
type Shader struct {
	mu sync.Mutex

	name       string
	kind       Kind
	fileName   string
	source     string
	binary     *Binary
	injections []compose.Injection

	// programs is only used to fan out relink requests.
	programs map[Program]struct{}

	// perContext is indexed by context id; nil slots are unused.
	perContext []*PerContext

	loader           Loader
	registry         *deletion.Registry
	dirtyOnInjection bool
}

// NewShader creates a shader of the given kind.
//
// Example:
//
//	s := shaderres.NewShader(shaderres.Vertex, shaderres.WithSource(src))
func NewShader(kind Kind, opts ...Option) *Shader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Shader{
		name:             o.name,
		kind:             kind,
		source:           o.source,
		binary:           o.binary,
		programs:         make(map[Program]struct{}),
		loader:           o.loader,
		registry:         o.registry,
		dirtyOnInjection: o.dirtyOnInjection,
	}
	return s
}

// LoadShaderFile creates a shader of the given kind from a source file.
func LoadShaderFile(kind Kind, path string, opts ...Option) (*Shader, error) {
	s := NewShader(kind, opts...)
	if err := s.LoadSourceFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the debug name.
func (s *Shader) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName sets the debug name used for labels and logs.
func (s *Shader) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// Kind returns the shader kind.
func (s *Shader) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// SetType changes the kind. It fails while a per-context object holds a
// handle compiled for the current, concrete kind; release or invalidate the
// shader first. A successful change invalidates every per-context object.
func (s *Shader) SetType(kind Kind) bool {
	s.mu.Lock()
	if s.kind == kind {
		s.mu.Unlock()
		return true
	}
	if s.kind != Undefined && s.hasCompiledLocked() {
		cur := s.kind
		s.mu.Unlock()
		Logger().Warn("shaderres: cannot change type of compiled shader",
			"shader", s.Name(), "from", cur, "to", kind)
		return false
	}
	s.kind = kind
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
	return true
}

func (s *Shader) hasCompiledLocked() bool {
	for _, pc := range s.perContext {
		if pc != nil && pc.IsCompiled() {
			return true
		}
	}
	return false
}

// Source returns the source text.
func (s *Shader) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// SetSource replaces the source text, marks every per-context object dirty
// and asks attached programs to relink. Nothing is compiled here.
func (s *Shader) SetSource(text string) {
	s.mu.Lock()
	s.source = text
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
}

// Binary returns the binary payload, or nil.
func (s *Shader) Binary() *Binary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binary
}

// SetBinary takes ownership of b (nil removes the payload) with the same
// invalidation as SetSource.
func (s *Shader) SetBinary(b *Binary) {
	s.mu.Lock()
	s.binary = b
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
}

// FileName returns the path the source was loaded from, if any.
func (s *Shader) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName
}

// SetFileName records the origin path without loading anything.
func (s *Shader) SetFileName(path string) {
	s.mu.Lock()
	s.fileName = path
	s.mu.Unlock()
}

// AddInjection adds a code fragment at position (see package compose).
//
// Already compiled objects are left alone unless the shader was created
// with WithDirtyOnInjection(true); the fragment is used at the next
// compile. Call Invalidate to force one.
func (s *Shader) AddInjection(position float64, code string) {
	s.mu.Lock()
	s.injections = append(s.injections, compose.Injection{Position: position, Code: code})
	if !s.dirtyOnInjection {
		s.mu.Unlock()
		return
	}
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
}

// Injections returns the injections in insertion order.
func (s *Shader) Injections() []compose.Injection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.injections)
}

// ComposedSource returns the source text with all injections applied.
func (s *Shader) ComposedSource() (string, error) {
	s.mu.Lock()
	source, injections := s.source, s.injections
	s.mu.Unlock()
	return compose.Compose(source, injections)
}

// Invalidate marks every per-context object dirty and asks attached
// programs to relink.
func (s *Shader) Invalidate() {
	s.mu.Lock()
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
}

// invalidateLocked requests a compile on every per-context object and
// returns the programs to notify once the lock is released.
func (s *Shader) invalidateLocked() []Program {
	for _, pc := range s.perContext {
		if pc != nil {
			pc.RequestCompile()
		}
	}
	programs := make([]Program, 0, len(s.programs))
	for p := range s.programs {
		programs = append(programs, p)
	}
	return programs
}

func notify(programs []Program) {
	for _, p := range programs {
		p.RequestRelink()
	}
}

// AddProgramRef registers p for relink notifications.
func (s *Shader) AddProgramRef(p Program) {
	s.mu.Lock()
	s.programs[p] = struct{}{}
	s.mu.Unlock()
}

// RemoveProgramRef unregisters p.
func (s *Shader) RemoveProgramRef(p Program) {
	s.mu.Lock()
	delete(s.programs, p)
	s.mu.Unlock()
}

// NumProgramRefs returns the number of registered programs.
func (s *Shader) NumProgramRefs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.programs)
}

// PerContext returns the object for context id, or nil if the shader has
// not been used in that context.
func (s *Shader) PerContext(id ContextID) *PerContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) < len(s.perContext) {
		return s.perContext[id]
	}
	return nil
}

// GetOrCreatePerContext returns the object for context id, creating it on
// first use. It never returns nil.
func (s *Shader) GetOrCreatePerContext(id ContextID) *PerContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizeLocked(int(id) + 1)
	pc := s.perContext[id]
	if pc == nil {
		pc = newPerContext(s, id)
		s.perContext[id] = pc
		Logger().Info("shaderres: per-context shader created", "shader", s.name, "context", id)
	}
	return pc
}

// ResizeBuffers grows the per-context table to at least maxSize slots.
// Existing objects are kept.
func (s *Shader) ResizeBuffers(maxSize int) {
	s.mu.Lock()
	s.resizeLocked(maxSize)
	s.mu.Unlock()
}

func (s *Shader) resizeLocked(n int) {
	if n > len(s.perContext) {
		s.perContext = append(s.perContext, make([]*PerContext, n-len(s.perContext))...)
	}
}

// NeedsCompile reports whether the shader has a pending compile in
// context id. A shader never used in that context needs one.
func (s *Shader) NeedsCompile(id ContextID) bool {
	pc := s.PerContext(id)
	return pc == nil || pc.NeedsCompile()
}

// shaderTracker is implemented by states that tear down the shaders
// compiled through them, such as ContextState.
type shaderTracker interface {
	track(s *Shader)
}

// Compile compiles the shader for st's context if needed. When st is a
// ContextState the shader is released on its Close.
func (s *Shader) Compile(st State) error {
	if t, ok := st.(shaderTracker); ok {
		t.track(s)
	}
	return s.GetOrCreatePerContext(st.ContextID()).Compile(st.Driver())
}

// InfoLog returns the compile log for context id.
// ok is false when the shader has no object in that context.
func (s *Shader) InfoLog(id ContextID) (log string, ok bool) {
	pc := s.PerContext(id)
	if pc == nil {
		return "", false
	}
	return pc.InfoLog(), true
}

// AttachTo attaches the shader's object in st's context to program. If the
// shader has never been used in that context there is nothing to attach:
// a warning is logged and nil is returned.
func (s *Shader) AttachTo(program gpucore.ProgramHandle, st State) error {
	pc := s.PerContext(st.ContextID())
	if pc == nil {
		Logger().Warn("shaderres: attach without per-context shader",
			"shader", s.Name(), "context", st.ContextID(), "program", program)
		return nil
	}
	return pc.Attach(st.Driver(), program)
}

// DetachFrom detaches the shader's object in st's context from program,
// with the same missing-object behavior as AttachTo.
func (s *Shader) DetachFrom(program gpucore.ProgramHandle, st State) error {
	pc := s.PerContext(st.ContextID())
	if pc == nil {
		Logger().Warn("shaderres: detach without per-context shader",
			"shader", s.Name(), "context", st.ContextID(), "program", program)
		return nil
	}
	return pc.Detach(st.Driver(), program)
}

// Release drops the object for context id, queueing its handle for
// deferred deletion.
func (s *Shader) Release(id ContextID) {
	s.mu.Lock()
	var pc *PerContext
	if int(id) < len(s.perContext) {
		pc = s.perContext[id]
		s.perContext[id] = nil
	}
	s.mu.Unlock()
	if pc != nil {
		pc.release()
	}
}

// ReleaseAll drops the objects of every context.
func (s *Shader) ReleaseAll() {
	s.mu.Lock()
	released := s.perContext
	s.perContext = make([]*PerContext, len(released))
	s.mu.Unlock()
	for _, pc := range released {
		if pc != nil {
			pc.release()
		}
	}
}

// Close releases every per-context object. The shader may be used again
// afterwards; objects are recreated on demand.
func (s *Shader) Close() error {
	s.ReleaseAll()
	return nil
}

// enqueueDelete queues h, created in deletion generation gen of context
// id. Handles of a context discarded since then are dropped.
func (s *Shader) enqueueDelete(id ContextID, gen uint64, h gpucore.ShaderHandle) {
	if h.Valid() {
		s.registry.EnqueueGeneration(id, gen, h)
	}
}

// compileInput is the snapshot a PerContext compiles from.
type compileInput struct {
	name   string
	kind   Kind
	source string
	binary *Binary
}

// compileInput snapshots what to compile. Injections are composed here,
// once per compile, and never when a binary is used.
func (s *Shader) compileInput() (compileInput, error) {
	s.mu.Lock()
	in := compileInput{
		name:   s.name,
		kind:   s.kind,
		source: s.source,
		binary: s.binary,
	}
	injections := s.injections
	s.mu.Unlock()

	if in.name == "" {
		in.name = fmt.Sprintf("%s@%p", in.kind, s)
	}
	if in.binary != nil {
		return in, nil
	}
	if in.source == "" {
		return in, ErrNoCode
	}
	composed, err := compose.Compose(in.source, injections)
	if err != nil {
		return in, err
	}
	in.source = composed
	return in, nil
}
