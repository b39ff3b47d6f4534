// Package shaderres manages GPU shader resources shared by several
// graphics contexts.
//
// # Overview
//
// A [Shader] is one logical shader: a [Kind], source text or a precompiled
// [Binary], and an ordered list of code injections. Each graphics context
// that uses the shader gets its own [PerContext] object holding the handle
// compiled in that context's namespace. Per-context objects are created
// lazily and live in a table indexed by context id.
//
// Mutating the shader (SetSource, SetBinary, SetType) never touches the GPU.
// It only marks every per-context object dirty and asks attached programs to
// relink. The render loop of each context compiles what is dirty the next
// time it walks its shaders.
//
// # Quick Start
//
//	s := shaderres.NewShader(shaderres.Fragment,
//	    shaderres.WithSource(src),
//	)
//	s.AddInjection(-1, "const GAMMA: f32 = 2.2;")
//
//	// On the render goroutine of context 0:
//	st := shaderres.NewContextState(0, native.NewDriver(device, native.Config{}), nil)
//	if err := st.Compile(s); err != nil {
//	    log.Print(err)
//	}
//	st.Flush(2 * time.Millisecond) // bounded deferred deletion
//
// # Threading
//
// One goroutine owns each graphics context. Compile, Attach and Detach for a
// context must run on that goroutine; this is a caller contract and is not
// enforced. Every other method of [Shader] may be called from any goroutine.
// Handles dropped off the owning goroutine are queued in the deletion
// registry (package deletion) and destroyed by [ContextState.Flush].
//
// # Code Injection
//
// Injections are spliced into the source only when it is compiled (see
// package compose). Adding an injection does not invalidate objects that
// are already compiled unless [WithDirtyOnInjection] is set; call
// [Shader.Invalidate] to force recomposition.
package shaderres
