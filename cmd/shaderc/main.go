// Command shaderc compiles a WGSL shader file to SPIR-V.
//
// Usage:
//
//	shaderc [-kind fragment] [-inject pos:code]... [-o out.spv] [-v] file.wgsl
//
// Injections are spliced into the source before compilation. A negative
// position lands before the entry point, [0,1) inside it and 1 or more
// after it. The shader is compiled through a ContextState on a headless
// device, so the output is exactly what a renderer would upload.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/shaderres"
	"github.com/gogpu/shaderres/backend/native"
)

// injections collects repeated -inject flags.
type injections []struct {
	pos  float64
	code string
}

func (i *injections) String() string { return fmt.Sprint(len(*i)) }

func (i *injections) Set(v string) error {
	pos, code, ok := strings.Cut(v, ":")
	if !ok {
		return errors.New("want pos:code")
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(pos), 64)
	if err != nil {
		return fmt.Errorf("bad position %q: %w", pos, err)
	}
	*i = append(*i, struct {
		pos  float64
		code string
	}{p, code})
	return nil
}

var extKinds = map[string]shaderres.Kind{
	".vert": shaderres.Vertex,
	".frag": shaderres.Fragment,
	".comp": shaderres.Compute,
}

func main() {
	var inject injections
	var (
		kindName = flag.String("kind", "", "shader kind (vertex, fragment, compute); guessed from the extension if empty")
		output   = flag.String("o", "", "output file (default: input with .spv extension)")
		debug    = flag.Bool("g", false, "emit SPIR-V debug names")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Var(&inject, "inject", "inject code at a position, as pos:code (repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: shaderc [flags] file.wgsl")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	if *verbose {
		shaderres.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	kind := shaderres.ParseKind(*kindName)
	if kind == shaderres.Undefined {
		kind = extKinds[strings.ToLower(filepath.Ext(strings.TrimSuffix(input, ".wgsl")))]
	}
	if kind == shaderres.Undefined {
		log.Fatalf("cannot tell the shader kind of %s, use -kind", input)
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".spv"
	}

	words, err := compile(input, kind, inject, *debug)
	if err != nil {
		log.Fatal(err)
	}

	code := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(code[i*4:], w)
	}
	if err := os.WriteFile(out, code, 0o644); err != nil {
		log.Fatalf("Failed to write: %v", err)
	}

	log.Printf("%s (%s) compiled to %s (%d bytes)\n", input, kind, out, len(code))
}

func compile(input string, kind shaderres.Kind, inject injections, debug bool) ([]uint32, error) {
	shader, err := shaderres.LoadShaderFile(kind, input, shaderres.WithName(filepath.Base(input)))
	if err != nil {
		return nil, err
	}
	for _, in := range inject {
		shader.AddInjection(in.pos, in.code)
	}

	device, cleanup, err := openNoopDevice()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	drv := native.NewDriver(device, native.Config{Label: "shaderc", Debug: debug, CacheCapacity: -1})
	defer drv.Destroy()

	state := shaderres.NewContextState(0, drv, nil)
	defer func() { _ = state.Close() }()

	if err := state.Compile(shader); err != nil {
		if info, ok := shader.InfoLog(state.ContextID()); ok && info != "" {
			fmt.Fprint(os.Stderr, info)
		}
		return nil, err
	}

	words, ok := drv.SPIRV(shader.PerContext(state.ContextID()).Handle())
	if !ok {
		return nil, errors.New("compiled shader has no SPIR-V")
	}
	return words, nil
}

func openNoopDevice() (hal.Device, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, errors.New("no adapter")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("open device: %w", err)
	}
	return openDev.Device, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}, nil
}
