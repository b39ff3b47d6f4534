package native

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shaderres"
	"github.com/gogpu/shaderres/gpucore"
)

// Config configures a Driver.
type Config struct {
	// Label prefixes the debug label of every shader module.
	Label string

	// Debug emits SPIR-V debug names.
	Debug bool

	// CacheCapacity bounds the SPIR-V cache. Zero means
	// DefaultCacheCapacity, negative disables the cache.
	CacheCapacity int
}

// Driver implements shaderres.Driver for a single hal.Device.
//
// Shader and program handles are allocated from one counter starting at 1,
// so a zero handle is never issued.
type Driver struct {
	device hal.Device
	config Config
	cache  *spirvCache

	nextID atomic.Uint64

	mu       sync.RWMutex
	modules  map[gpucore.ShaderHandle]module
	programs map[gpucore.ProgramHandle][]gpucore.ShaderHandle
}

type module struct {
	mod   hal.ShaderModule
	kind  shaderres.Kind
	words []uint32
}

var _ shaderres.Driver = (*Driver)(nil)

// NewDriver creates a driver that creates shader modules on device.
func NewDriver(device hal.Device, config Config) *Driver {
	d := &Driver{
		device:   device,
		config:   config,
		modules:  make(map[gpucore.ShaderHandle]module),
		programs: make(map[gpucore.ProgramHandle][]gpucore.ShaderHandle),
	}
	switch {
	case config.CacheCapacity == 0:
		d.cache = newSPIRVCache(DefaultCacheCapacity)
	case config.CacheCapacity > 0:
		d.cache = newSPIRVCache(config.CacheCapacity)
	}
	d.nextID.Store(1)
	return d
}

// halProvider is implemented by device providers that expose the
// underlying HAL objects.
type halProvider interface {
	HalDevice() any
}

// NewDriverFromProvider creates a driver on the HAL device of a host
// application's device provider.
func NewDriverFromProvider(provider gpucontext.DeviceProvider, config Config) (*Driver, error) {
	if provider == nil {
		return nil, ErrNoHALDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not expose HalDevice", ErrNoHALDevice, provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHALDevice, hp.HalDevice())
	}
	return NewDriver(device, config), nil
}

func (d *Driver) newID() uint64 {
	return d.nextID.Add(1) - 1
}

func (d *Driver) label(label string) string {
	if d.config.Label == "" {
		return label
	}
	return d.config.Label + "/" + label
}

// CompileSource compiles WGSL source and creates a shader module from it.
func (d *Driver) CompileSource(kind shaderres.Kind, source, label string) (gpucore.ShaderHandle, string, error) {
	key := cacheKey{kind: kind, debug: d.config.Debug, source: source}
	words, ok := d.cache.get(key)
	if !ok {
		var log string
		var err error
		words, log, err = CompileWGSL(kind, source, d.config.Debug)
		if err != nil {
			shaderres.Logger().Debug("native: compile failed",
				"label", label, "kind", kind.String(), "error", err)
			return gpucore.InvalidID, log, err
		}
		d.cache.put(key, words)
	}
	h, err := d.createModule(kind, words, label)
	return h, "", err
}

// LoadBinary creates a shader module from a SPIR-V blob.
func (d *Driver) LoadBinary(kind shaderres.Kind, code []byte, label string) (gpucore.ShaderHandle, string, error) {
	if kind.Stage() == 0 {
		return gpucore.InvalidID, "", fmt.Errorf("%w: %s", ErrUnsupportedStage, kind)
	}
	words, err := toWords(code)
	if err != nil {
		return gpucore.InvalidID, err.Error(), err
	}
	h, err := d.createModule(kind, words, label)
	return h, "", err
}

func (d *Driver) createModule(kind shaderres.Kind, words []uint32, label string) (gpucore.ShaderHandle, error) {
	mod, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: d.label(label),
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("failed to create shader module: %w", err)
	}

	h := gpucore.ShaderHandle(d.newID())

	d.mu.Lock()
	d.modules[h] = module{mod: mod, kind: kind, words: words}
	d.mu.Unlock()

	shaderres.Logger().Debug("native: shader module created",
		"label", label, "kind", kind.String(), "handle", uint64(h), "words", len(words))
	return h, nil
}

// DeleteShader destroys the module behind h and detaches it from every
// program. Unknown handles are ignored.
func (d *Driver) DeleteShader(h gpucore.ShaderHandle) {
	d.mu.Lock()
	m, ok := d.modules[h]
	if ok {
		delete(d.modules, h)
		for p, attached := range d.programs {
			d.programs[p] = slices.DeleteFunc(attached, func(a gpucore.ShaderHandle) bool { return a == h })
		}
	}
	d.mu.Unlock()

	if ok {
		d.device.DestroyShaderModule(m.mod)
	}
}

// Module returns the HAL module behind h for pipeline creation.
func (d *Driver) Module(h gpucore.ShaderHandle) (hal.ShaderModule, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.modules[h]
	return m.mod, ok
}

// SPIRV returns the code h was created from. Callers must not modify it.
func (d *Driver) SPIRV(h gpucore.ShaderHandle) ([]uint32, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.modules[h]
	return m.words, ok
}

// NumModules returns the number of live shader modules.
func (d *Driver) NumModules() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.modules)
}

// CreateProgram allocates an empty program.
func (d *Driver) CreateProgram() gpucore.ProgramHandle {
	p := gpucore.ProgramHandle(d.newID())
	d.mu.Lock()
	d.programs[p] = nil
	d.mu.Unlock()
	return p
}

// DeleteProgram forgets p. Attached shaders are left alive.
func (d *Driver) DeleteProgram(p gpucore.ProgramHandle) {
	d.mu.Lock()
	delete(d.programs, p)
	d.mu.Unlock()
}

// AttachShader attaches h to program. Attaching twice is a no-op.
func (d *Driver) AttachShader(program gpucore.ProgramHandle, h gpucore.ShaderHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	attached, ok := d.programs[program]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, program)
	}
	if _, ok := d.modules[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownShader, h)
	}
	if slices.Contains(attached, h) {
		return nil
	}
	d.programs[program] = append(attached, h)
	return nil
}

// DetachShader detaches h from program.
func (d *Driver) DetachShader(program gpucore.ProgramHandle, h gpucore.ShaderHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	attached, ok := d.programs[program]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, program)
	}
	i := slices.Index(attached, h)
	if i < 0 {
		return fmt.Errorf("%w: %d not attached to program %d", ErrUnknownShader, h, program)
	}
	d.programs[program] = slices.Delete(attached, i, i+1)
	return nil
}

// Attached returns the shaders attached to program in attach order.
func (d *Driver) Attached(program gpucore.ProgramHandle) []gpucore.ShaderHandle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.programs[program])
}

// CacheStats returns SPIR-V cache counters.
func (d *Driver) CacheStats() CacheStats {
	return d.cache.stats()
}

// Destroy destroys every remaining shader module. Handles still held by
// shaders become dangling, so call it after the owning ContextState is
// closed.
func (d *Driver) Destroy() {
	d.mu.Lock()
	mods := d.modules
	d.modules = make(map[gpucore.ShaderHandle]module)
	d.programs = make(map[gpucore.ProgramHandle][]gpucore.ShaderHandle)
	d.mu.Unlock()

	for _, m := range mods {
		d.device.DestroyShaderModule(m.mod)
	}
	if len(mods) > 0 {
		shaderres.Logger().Debug("native: destroyed shader modules", "count", len(mods))
	}
}
