package native

import "errors"

var (
	// ErrUnsupportedStage is returned when a shader kind has no WebGPU stage
	// (tessellation, geometry, undefined) or when the source has no entry
	// point for the requested stage.
	ErrUnsupportedStage = errors.New("native: unsupported shader stage")

	// ErrInvalidBinary is returned by LoadBinary for blobs that are not
	// SPIR-V.
	ErrInvalidBinary = errors.New("native: invalid SPIR-V binary")

	// ErrUnknownShader is returned when a handle was not created by this
	// driver or has already been deleted.
	ErrUnknownShader = errors.New("native: unknown shader handle")

	// ErrUnknownProgram is returned for program handles not created by
	// CreateProgram.
	ErrUnknownProgram = errors.New("native: unknown program handle")

	// ErrNoHALDevice is returned by NewDriverFromProvider when the provider
	// does not expose a HAL device.
	ErrNoHALDevice = errors.New("native: provider has no HAL device")
)
