package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shaderres"
	"github.com/gogpu/shaderres/gpucore"
)

// nopDriver is a driver that compiles nothing.
type nopDriver struct{ name string }

func (nopDriver) CompileSource(shaderres.Kind, string, string) (gpucore.ShaderHandle, string, error) {
	return 1, "", nil
}

func (nopDriver) LoadBinary(shaderres.Kind, []byte, string) (gpucore.ShaderHandle, string, error) {
	return 1, "", nil
}

func (nopDriver) DeleteShader(gpucore.ShaderHandle) {}

func (nopDriver) AttachShader(gpucore.ProgramHandle, gpucore.ShaderHandle) error { return nil }

func (nopDriver) DetachShader(gpucore.ProgramHandle, gpucore.ShaderHandle) error { return nil }

var errRefused = errors.New("refused")

func factoryFor(name string, err error) Factory {
	return func(gpucontext.DeviceProvider) (shaderres.Driver, error) {
		if err != nil {
			return nil, err
		}
		return nopDriver{name: name}, nil
	}
}

// withBackends swaps the registry contents for the duration of a test.
func withBackends(t *testing.T, factories map[string]Factory) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = factories
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func TestRegisterAndUnregister(t *testing.T) {
	withBackends(t, make(map[string]Factory))

	Register("test", factoryFor("test", nil))
	if !IsRegistered("test") {
		t.Fatal("test backend not registered")
	}
	if got := Available(); !slices.Equal(got, []string{"test"}) {
		t.Errorf("Available() = %v", got)
	}

	Unregister("test")
	if IsRegistered("test") {
		t.Error("test backend still registered")
	}
}

func TestAvailableSorted(t *testing.T) {
	withBackends(t, map[string]Factory{
		"zeta":  factoryFor("zeta", nil),
		"alpha": factoryFor("alpha", nil),
		"mid":   factoryFor("mid", nil),
	})
	if got := Available(); !slices.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Available() = %v", got)
	}
}

func TestOpen(t *testing.T) {
	withBackends(t, map[string]Factory{
		"ok":     factoryFor("ok", nil),
		"broken": factoryFor("broken", errRefused),
	})

	d, err := Open("ok", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.(nopDriver).name != "ok" {
		t.Errorf("got driver %v", d)
	}

	if _, err := Open("missing", nil); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v, want ErrBackendNotAvailable", err)
	}
	if _, err := Open("broken", nil); !errors.Is(err, errRefused) {
		t.Errorf("err = %v, want errRefused", err)
	}
}

func TestOpenDefault(t *testing.T) {
	tests := []struct {
		name      string
		factories map[string]Factory
		want      string
		wantErr   error
	}{
		{
			name:      "empty",
			factories: map[string]Factory{},
			wantErr:   ErrBackendNotAvailable,
		},
		{
			name: "priority wins",
			factories: map[string]Factory{
				"aaa":         factoryFor("aaa", nil),
				BackendNative: factoryFor(BackendNative, nil),
			},
			want: BackendNative,
		},
		{
			name: "falls back when priority refuses",
			factories: map[string]Factory{
				"aaa":         factoryFor("aaa", nil),
				BackendNative: factoryFor(BackendNative, errRefused),
			},
			want: "aaa",
		},
		{
			name: "all refuse",
			factories: map[string]Factory{
				BackendNative: factoryFor(BackendNative, errRefused),
			},
			wantErr: errRefused,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBackends(t, tt.factories)
			d, err := OpenDefault(nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenDefault: %v", err)
			}
			if got := d.(nopDriver).name; got != tt.want {
				t.Errorf("selected %q, want %q", got, tt.want)
			}
		})
	}
}
