package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/shaderres"
)

func TestInjectionsFlag(t *testing.T) {
	var in injections
	if err := in.Set("-1:const A: f32 = 1.0;"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := in.Set("0.5:let b = A;"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(in) != 2 || in[0].pos != -1 || in[0].code != "const A: f32 = 1.0;" || in[1].pos != 0.5 {
		t.Fatalf("injections = %+v", in)
	}
	if err := in.Set("nocolon"); err == nil {
		t.Error("expected error for missing colon")
	}
	if err := in.Set("x:code"); err == nil {
		t.Error("expected error for bad position")
	}
}

func TestCompile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.frag.wgsl")
	src := "@fragment\nfn main() -> @location(0) vec4<f32> {\n    return vec4<f32>(RED, 0.0, 0.0, 1.0);\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	inject := injections{{pos: -1, code: "const RED: f32 = 1.0;"}}
	words, err := compile(path, shaderres.Fragment, inject, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(words) == 0 || words[0] != 0x07230203 {
		t.Fatal("output is not SPIR-V")
	}

	// Without the injection RED is undefined.
	if _, err := compile(path, shaderres.Fragment, nil, false); err == nil {
		t.Error("expected compile error without injection")
	}

	if _, err := compile(filepath.Join(t.TempDir(), "missing.wgsl"), shaderres.Fragment, nil, false); err == nil {
		t.Error("expected error for missing file")
	}
}
