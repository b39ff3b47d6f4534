package native

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shaderres"
	"github.com/gogpu/shaderres/backend"
)

func init() {
	backend.Register(backend.BackendNative, func(provider gpucontext.DeviceProvider) (shaderres.Driver, error) {
		return NewDriverFromProvider(provider, Config{})
	})
}
