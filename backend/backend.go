package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shaderres"
)

// Backend names.
const (
	// BackendNative compiles WGSL with naga and creates modules on a wgpu
	// HAL device.
	BackendNative = "native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory creates a shader driver for the device of a host application.
//
// Backends register a Factory via Register and are selected via Open or
// OpenDefault. A factory returns an error when the provider's device is
// not usable by the backend.
type Factory func(provider gpucontext.DeviceProvider) (shaderres.Driver, error)
