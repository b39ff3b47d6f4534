package shaderres

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSourceFile(t *testing.T) {
	path := writeFile(t, "a.frag", []byte("void main(){}\n"))
	s, _ := newTestShader(Fragment, "old")
	pc := s.GetOrCreatePerContext(0)
	_ = pc.Compile(newFakeDriver())

	if err := s.LoadSourceFile(path); err != nil {
		t.Fatalf("LoadSourceFile() error = %v", err)
	}
	if s.Source() != "void main(){}\n" || s.FileName() != path {
		t.Errorf("Source() = %q, FileName() = %q", s.Source(), s.FileName())
	}
	if pc.State() != Dirty {
		t.Errorf("state = %v, want Dirty", pc.State())
	}
}

func TestLoadSourceFileMissingLeavesShader(t *testing.T) {
	s, _ := newTestShader(Fragment, "keep me")
	err := s.LoadSourceFile(filepath.Join(t.TempDir(), "missing.frag"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("error = %v, want ErrIO", err)
	}
	if s.Source() != "keep me" || s.FileName() != "" {
		t.Error("failed load modified the shader")
	}
}

func TestLoadShaderFile(t *testing.T) {
	path := writeFile(t, "v.vert", []byte("void main(){}"))
	s, err := LoadShaderFile(Vertex, path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind() != Vertex || s.Source() != "void main(){}" {
		t.Errorf("LoadShaderFile() = %v %q", s.Kind(), s.Source())
	}
	if _, err := LoadShaderFile(Vertex, path+".nope"); !errors.Is(err, ErrIO) {
		t.Errorf("missing file error = %v, want ErrIO", err)
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("void main(){}"), "void main(){}"},
		{"utf8 bom", append([]byte{0xef, 0xbb, 0xbf}, "x"...), "x"},
		{"utf16le bom", []byte{0xff, 0xfe, 'h', 0, 'i', 0}, "hi"},
		{"utf16be bom", []byte{0xfe, 0xff, 0, 'o', 0, 'k'}, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadBinaryFile(t *testing.T) {
	path := writeFile(t, "s.spv", []byte{3, 2, 0x23, 7})
	b, err := ReadBinaryFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 4 || b.Words()[0] != 0x07230203 {
		t.Errorf("ReadBinaryFile() = %v", b.Bytes())
	}

	empty := writeFile(t, "e.spv", nil)
	if _, err := ReadBinaryFile(empty); !errors.Is(err, ErrIO) {
		t.Errorf("empty file error = %v, want ErrIO", err)
	}
}

// memLoader serves files from a map.
type memLoader map[string]string

func (m memLoader) LoadText(path string) (string, error) {
	s, ok := m[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return s, nil
}

func (m memLoader) LoadBinary(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(s), nil
}

func TestCustomLoader(t *testing.T) {
	l := memLoader{"mem://a": "void main(){}", "mem://b.spv": "\x03\x02\x23\x07"}
	s, _ := newTestShader(Fragment, "", WithLoader(l))

	if err := s.LoadSourceFile("mem://a"); err != nil {
		t.Fatal(err)
	}
	if s.Source() != "void main(){}" {
		t.Errorf("Source() = %q", s.Source())
	}
	if err := s.LoadBinaryFile("mem://b.spv"); err != nil {
		t.Fatal(err)
	}
	if s.Binary().Len() != 4 {
		t.Errorf("Binary().Len() = %d", s.Binary().Len())
	}
	if err := s.LoadBinaryFile("mem://none"); !errors.Is(err, ErrIO) {
		t.Errorf("error = %v, want ErrIO", err)
	}
	if s.Binary().Len() != 4 {
		t.Error("failed binary load replaced the payload")
	}
}

// bufLoader hands out the same buffer on every call, like a loader
// reading into a reusable scratch slice.
type bufLoader struct{ buf []byte }

func (l *bufLoader) LoadText(string) (string, error) { return string(l.buf), nil }

func (l *bufLoader) LoadBinary(string) ([]byte, error) { return l.buf, nil }

func TestLoadBinaryFileCopiesLoaderBuffer(t *testing.T) {
	l := &bufLoader{buf: []byte{0x03, 0x02, 0x23, 0x07}}
	s, _ := newTestShader(Fragment, "", WithLoader(l))

	if err := s.LoadBinaryFile("scratch.spv"); err != nil {
		t.Fatal(err)
	}
	l.buf[0] = 0xff

	if got := s.Binary().Bytes()[0]; got != 0x03 {
		t.Errorf("binary shares the loader buffer: first byte %#x", got)
	}
}
