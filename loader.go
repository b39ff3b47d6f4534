package shaderres

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Loader reads shader files. FileLoader is the default.
type Loader interface {
	// LoadText returns the content of a source file as UTF-8 text.
	LoadText(path string) (string, error)

	// LoadBinary returns the raw content of a binary file.
	LoadBinary(path string) ([]byte, error)
}

// FileLoader reads from the local file system. Text files may be UTF-8
// (with or without BOM) or UTF-16 with a BOM; the result is UTF-8 without
// BOM, since shader compilers reject a leading BOM.
type FileLoader struct{}

// LoadText implements Loader.
func (FileLoader) LoadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeText(b)
}

// LoadBinary implements Loader.
func (FileLoader) LoadBinary(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DecodeText converts raw file content to UTF-8, honoring and stripping a
// byte order mark.
func DecodeText(b []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// LoadSourceFile replaces the source with the content of path and records
// path as the file name. On failure the shader is left untouched and the
// error wraps ErrIO.
func (s *Shader) LoadSourceFile(path string) error {
	s.mu.Lock()
	l := s.loader
	s.mu.Unlock()

	text, err := l.LoadText(path)
	if err != nil {
		Logger().Warn("shaderres: load source failed", "path", path, "err", err)
		return fmt.Errorf("%w: load shader source %q: %v", ErrIO, path, err)
	}

	s.mu.Lock()
	s.fileName = path
	s.source = text
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
	return nil
}

// LoadBinaryFile replaces the binary payload with the content of path.
// On failure the shader is left untouched and the error wraps ErrIO.
func (s *Shader) LoadBinaryFile(path string) error {
	s.mu.Lock()
	l := s.loader
	s.mu.Unlock()

	b, err := readBinary(l, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.fileName = path
	s.binary = b
	programs := s.invalidateLocked()
	s.mu.Unlock()
	notify(programs)
	return nil
}

// ReadBinaryFile reads a shader binary from disk.
func ReadBinaryFile(path string) (*Binary, error) {
	return readBinary(FileLoader{}, path)
}

func readBinary(l Loader, path string) (*Binary, error) {
	data, err := l.LoadBinary(path)
	if err != nil {
		Logger().Warn("shaderres: load binary failed", "path", path, "err", err)
		return nil, fmt.Errorf("%w: load shader binary %q: %v", ErrIO, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: load shader binary %q: empty file", ErrIO, path)
	}
	return NewBinaryFromBytes(data), nil
}
