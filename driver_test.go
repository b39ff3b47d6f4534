package shaderres

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/shaderres/gpucore"
)

// fakeDriver records every call made by the package under test.
type fakeDriver struct {
	mu sync.Mutex

	next     gpucore.ShaderHandle
	sources  []string
	binaries [][]byte
	kinds    []Kind
	deleted  []gpucore.ShaderHandle
	attached map[gpucore.ProgramHandle][]gpucore.ShaderHandle

	// failOn makes CompileSource fail for sources containing it.
	failOn string

	// onCompile, if set, runs at the start of CompileSource without the
	// driver lock held.
	onCompile func()
}

var errRejected = errors.New("fake: rejected")

func newFakeDriver() *fakeDriver {
	return &fakeDriver{attached: make(map[gpucore.ProgramHandle][]gpucore.ShaderHandle)}
}

func (d *fakeDriver) newHandle() gpucore.ShaderHandle {
	d.next++
	return d.next
}

func (d *fakeDriver) CompileSource(kind Kind, source, _ string) (gpucore.ShaderHandle, string, error) {
	if d.onCompile != nil {
		d.onCompile()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources = append(d.sources, source)
	d.kinds = append(d.kinds, kind)
	if d.failOn != "" && strings.Contains(source, d.failOn) {
		return gpucore.InvalidID, "0:1: error: unexpected " + d.failOn, errRejected
	}
	return d.newHandle(), "", nil
}

func (d *fakeDriver) LoadBinary(kind Kind, code []byte, _ string) (gpucore.ShaderHandle, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.binaries = append(d.binaries, slices.Clone(code))
	d.kinds = append(d.kinds, kind)
	return d.newHandle(), "binary ok", nil
}

func (d *fakeDriver) DeleteShader(h gpucore.ShaderHandle) {
	d.mu.Lock()
	d.deleted = append(d.deleted, h)
	d.mu.Unlock()
}

func (d *fakeDriver) AttachShader(p gpucore.ProgramHandle, h gpucore.ShaderHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attached[p] = append(d.attached[p], h)
	return nil
}

func (d *fakeDriver) DetachShader(p gpucore.ProgramHandle, h gpucore.ShaderHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.attached[p], h)
	if i < 0 {
		return errors.New("fake: not attached")
	}
	d.attached[p] = slices.Delete(d.attached[p], i, i+1)
	return nil
}

func (d *fakeDriver) deletedHandles() []gpucore.ShaderHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.deleted)
}

func (d *fakeDriver) compileCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sources) + len(d.binaries)
}

// fakeProgram counts relink requests.
type fakeProgram struct {
	mu      sync.Mutex
	relinks int
}

func (p *fakeProgram) RequestRelink() {
	p.mu.Lock()
	p.relinks++
	p.mu.Unlock()
}

func (p *fakeProgram) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.relinks
}
