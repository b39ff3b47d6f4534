package shaderres

import (
	"testing"

	"github.com/gogpu/shaderres/deletion"
)

// TestNewShaderDefault tests that NewShader uses the file loader and the
// process-wide registry by default.
func TestNewShaderDefault(t *testing.T) {
	s := NewShader(Vertex)
	if s == nil {
		t.Fatal("NewShader returned nil")
	}
	if _, ok := s.loader.(FileLoader); !ok {
		t.Errorf("loader = %T, want FileLoader", s.loader)
	}
	if s.registry != deletion.Default() {
		t.Error("registry is not deletion.Default()")
	}
	if s.dirtyOnInjection {
		t.Error("dirtyOnInjection should be off by default")
	}
	if s.Source() != "" || s.Binary() != nil {
		t.Error("new shader should have no code")
	}
}

func TestNewShaderWithOptions(t *testing.T) {
	reg := deletion.New(deletion.Config{})
	l := memLoader{}
	b := NewBinary(4)

	s := NewShader(Fragment,
		WithName("tonemap"),
		WithSource("void main(){}"),
		WithBinary(b),
		WithLoader(l),
		WithDeletionRegistry(reg),
		WithDirtyOnInjection(true),
	)

	if s.Name() != "tonemap" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Source() != "void main(){}" {
		t.Errorf("Source() = %q", s.Source())
	}
	if s.Binary() != b {
		t.Error("binary not stored")
	}
	if _, ok := s.loader.(memLoader); !ok {
		t.Errorf("loader = %T, want memLoader", s.loader)
	}
	if s.registry != reg {
		t.Error("registry not stored")
	}
	if !s.dirtyOnInjection {
		t.Error("dirtyOnInjection not set")
	}
}

// TestNilOptionsIgnored tests that nil loader and registry keep the defaults.
func TestNilOptionsIgnored(t *testing.T) {
	s := NewShader(Compute, WithLoader(nil), WithDeletionRegistry(nil))
	if s.loader == nil {
		t.Error("nil loader replaced the default")
	}
	if s.registry == nil {
		t.Error("nil registry replaced the default")
	}
}
