// Package native implements shaderres.Driver on top of a wgpu HAL device.
//
// Source text is treated as WGSL and compiled with naga into SPIR-V before
// the shader module is created. Precompiled blobs are expected to be SPIR-V
// and are handed to the device after a header check.
//
// Basic usage:
//
//	drv := native.NewDriver(device, native.Config{Label: "scene"})
//	state := shaderres.NewContextState(0, drv, nil)
//	if err := state.Compile(vs, fs); err != nil {
//		return err
//	}
//
// A Driver is bound to one device and therefore to one graphics context.
// Handles it returns are meaningless to any other Driver.
package native
