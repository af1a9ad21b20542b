package records

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultBasePath     = "/api"
	defaultMaxBodyBytes = 1 << 20
)

// GuardFunc authorizes a request before it reaches a route. Returning an
// HTTPError selects the status code; any other error answers 403.
type GuardFunc func(r *http.Request) error

type Options struct {
	BasePath     string
	Renderer     string
	MaxBodyBytes int64
	Guard        GuardFunc
	Logger       *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		BasePath:     defaultBasePath,
		MaxBodyBytes: defaultMaxBodyBytes,
		Logger:       zap.NewNop(),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	opts.BasePath = normalizeBase(opts.BasePath)
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

// WithBasePath mounts every route under base. "/" mounts at the root.
func WithBasePath(base string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = base
	}
}

// WithRenderer names the registry renderer used by the render route. Empty
// uses the registry default.
func WithRenderer(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = name
	}
}

func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func normalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}
