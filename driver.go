package shaderres

import "github.com/gogpu/shaderres/gpucore"

// ContextID identifies a graphics context. See gpucore.ContextID.
type ContextID = gpucore.ContextID

// Driver is the per-context GPU function table. One Driver serves one
// context and must only be used from the goroutine owning that context.
//
// Compile and load calls return the new handle and the compiler log. On
// failure the handle is invalid and the log carries the diagnostics.
type Driver interface {
	// CompileSource compiles source text for the given kind.
	CompileSource(kind Kind, source, label string) (gpucore.ShaderHandle, string, error)

	// LoadBinary creates a shader from a precompiled blob.
	LoadBinary(kind Kind, code []byte, label string) (gpucore.ShaderHandle, string, error)

	// DeleteShader destroys a handle created by this driver.
	DeleteShader(h gpucore.ShaderHandle)

	// AttachShader attaches a compiled shader to a program.
	AttachShader(program gpucore.ProgramHandle, h gpucore.ShaderHandle) error

	// DetachShader detaches a compiled shader from a program.
	DetachShader(program gpucore.ProgramHandle, h gpucore.ShaderHandle) error
}

// State is the render-time view of one context: its id and its driver.
// ContextState is the stock implementation.
type State interface {
	ContextID() ContextID
	Driver() Driver
}

// Program is notified when an attached shader changes and the program has
// to relink. A Shader holds programs only for this notification; it never
// manages their lifetime. Programs must call Shader.RemoveProgramRef before
// they go away.
type Program interface {
	RequestRelink()
}
