package shaderres

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// Kind is the pipeline stage a shader is written for.
type Kind uint8

// Shader kinds. The zero value is Undefined.
const (
	Undefined Kind = iota
	Vertex
	TessControl
	TessEvaluation
	Geometry
	Fragment
	Compute
)

var kindNames = [...]string{
	Undefined:      "UNDEFINED",
	Vertex:         "VERTEX",
	TessControl:    "TESSCONTROL",
	TessEvaluation: "TESSEVALUATION",
	Geometry:       "GEOMETRY",
	Fragment:       "FRAGMENT",
	Compute:        "COMPUTE",
}

// String returns the canonical type name, e.g. "FRAGMENT".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[Undefined]
}

// ParseKind maps a type name to a Kind. Matching ignores case and
// surrounding space. Unknown names map to Undefined.
func ParseKind(name string) Kind {
	name = strings.ToUpper(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k)
		}
	}
	return Undefined
}

// Stage returns the WebGPU stage flag for k, or 0 for kinds WebGPU has no
// stage for (tessellation, geometry, undefined).
func (k Kind) Stage() gputypes.ShaderStage {
	switch k {
	case Vertex:
		return gputypes.ShaderStageVertex
	case Fragment:
		return gputypes.ShaderStageFragment
	case Compute:
		return gputypes.ShaderStageCompute
	default:
		return 0
	}
}
