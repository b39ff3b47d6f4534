// Package gpucore provides the shared GPU handle vocabulary used by
// shaderres and its backends.
//
// The types here are deliberately tiny: a [ContextID] names a graphics
// context, and [ShaderHandle] / [ProgramHandle] are opaque integers whose
// meaning is defined by the driver of that context. Keeping them in a leaf
// package lets the deferred deletion registry, the shader resource and the
// backends agree on handles without importing each other.
//
// # Resource Management
//
// A handle is valid only within the context that created it. Handles must
// be destroyed on the goroutine that owns the context; code that drops a
// handle elsewhere hands it to the deletion registry instead
// (see package deletion).
package gpucore
