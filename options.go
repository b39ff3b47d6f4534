package shaderres

import "github.com/gogpu/shaderres/deletion"

// Option configures a Shader during creation.
//
// Example:
//
//	s := shaderres.NewShader(shaderres.Fragment,
//	    shaderres.WithName("tonemap"),
//	    shaderres.WithSource(src),
//	    shaderres.WithDirtyOnInjection(true),
//	)
type Option func(*shaderOptions)

// shaderOptions holds optional configuration for Shader creation.
type shaderOptions struct {
	name             string
	source           string
	binary           *Binary
	loader           Loader
	registry         *deletion.Registry
	dirtyOnInjection bool
}

// defaultOptions returns the default shader options.
func defaultOptions() shaderOptions {
	return shaderOptions{
		loader:   FileLoader{},
		registry: deletion.Default(),
	}
}

// WithName sets the debug name.
func WithName(name string) Option {
	return func(o *shaderOptions) {
		o.name = name
	}
}

// WithSource sets the initial source text.
func WithSource(text string) Option {
	return func(o *shaderOptions) {
		o.source = text
	}
}

// WithBinary sets the initial binary payload. The shader takes ownership.
func WithBinary(b *Binary) Option {
	return func(o *shaderOptions) {
		o.binary = b
	}
}

// WithLoader replaces the file loader used by LoadSourceFile and
// LoadBinaryFile. A nil loader is ignored.
func WithLoader(l Loader) Option {
	return func(o *shaderOptions) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithDeletionRegistry sets the registry that receives released handles.
// Defaults to deletion.Default(). The render loop must flush the same
// registry. A nil registry is ignored.
func WithDeletionRegistry(r *deletion.Registry) Option {
	return func(o *shaderOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithDirtyOnInjection makes AddInjection invalidate compiled objects.
// Off by default: injections are picked up at the next compile only.
func WithDirtyOnInjection(enabled bool) Option {
	return func(o *shaderOptions) {
		o.dirtyOnInjection = enabled
	}
}
