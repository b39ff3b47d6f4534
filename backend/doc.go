// Package backend selects the shader driver a graphics context uses.
//
// Driver implementations register a Factory under a name from an init()
// function. Importing the implementation package is enough:
//
//	import _ "github.com/gogpu/shaderres/backend/native"
//
// # Backend Selection
//
// Use OpenDefault to get a driver from the first backend that accepts the
// host's device provider, or Open to request a specific backend by name:
//
//	drv, err := backend.OpenDefault(provider)
//
//	// Or request a specific backend
//	drv, err := backend.Open(backend.BackendNative, provider)
//
// The driver is then bound to a context:
//
//	state := shaderres.NewContextState(id, drv, nil)
//
// # Available Backends
//
// - "native": naga WGSL compiler on a wgpu HAL device
package backend
