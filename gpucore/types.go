package gpucore

import "strconv"

// Resource IDs
//
// These opaque IDs name GPU objects and the namespaces they live in. Each
// driver implementation maintains the mapping between IDs and the actual
// backend objects. IDs are only meaningful inside the context that created
// them.

// ContextID identifies a graphics context: an independent GPU object
// namespace with its own command stream. Context IDs are small dense
// integers so they can index per-context tables directly.
type ContextID uint32

// ShaderHandle is an opaque handle to a compiled shader object.
type ShaderHandle uint64

// ProgramHandle is an opaque handle to a program (the object shaders are
// attached to before linking).
type ProgramHandle uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Valid reports whether h refers to a live shader object.
func (h ShaderHandle) Valid() bool { return h != InvalidID }

// Valid reports whether p refers to a live program object.
func (p ProgramHandle) Valid() bool { return p != InvalidID }

// String returns the context id in "ctx#N" form for logs.
func (c ContextID) String() string {
	return "ctx#" + strconv.FormatUint(uint64(c), 10)
}
