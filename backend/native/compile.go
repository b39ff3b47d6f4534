package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderres"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// spirvHeaderWords is the size of the fixed SPIR-V header.
const spirvHeaderWords = 5

// CompileWGSL compiles WGSL source for the given kind and returns SPIR-V
// words. The source must declare an entry point for kind's stage.
//
// The returned log is empty on success. On failure it carries the compiler
// diagnostics, one per line.
func CompileWGSL(kind shaderres.Kind, source string, debug bool) ([]uint32, string, error) {
	stage := kind.Stage()
	if stage == 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedStage, kind)
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err.Error(), fmt.Errorf("parse: %w", err)
	}

	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, err.Error(), fmt.Errorf("lower: %w", err)
	}

	if !hasStage(module, stage) {
		return nil, "", fmt.Errorf("%w: source has no %s entry point", ErrUnsupportedStage, kind)
	}

	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, err.Error(), fmt.Errorf("validate: %w", err)
	}
	if len(verrs) > 0 {
		var log strings.Builder
		errs := make([]error, 0, len(verrs))
		for _, ve := range verrs {
			log.WriteString(ve.Error())
			log.WriteByte('\n')
			errs = append(errs, ve)
		}
		return nil, log.String(), fmt.Errorf("validate: %w", errors.Join(errs...))
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: spirv.Version1_3,
		Debug:   debug,
	})
	if err != nil {
		return nil, err.Error(), err
	}

	words, err := toWords(code)
	if err != nil {
		return nil, "", err
	}
	return words, "", nil
}

// hasStage reports whether module declares an entry point for stage.
func hasStage(module *ir.Module, stage gputypes.ShaderStage) bool {
	for _, ep := range module.EntryPoints {
		if stageOf(ep.Stage) == stage {
			return true
		}
	}
	return false
}

func stageOf(s ir.ShaderStage) gputypes.ShaderStage {
	switch s {
	case ir.StageVertex:
		return gputypes.ShaderStageVertex
	case ir.StageFragment:
		return gputypes.ShaderStageFragment
	case ir.StageCompute:
		return gputypes.ShaderStageCompute
	}
	return 0
}

// toWords converts little-endian SPIR-V bytes into words and checks the
// header.
func toWords(code []byte) ([]uint32, error) {
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidBinary, len(code))
	}
	if len(code) < spirvHeaderWords*4 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidBinary, len(code))
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrInvalidBinary, words[0])
	}
	return words, nil
}
