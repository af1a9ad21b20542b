package records

import "net/http"

// Component bundles a service with its handler configuration and routing
// helpers.
type Component struct {
	svc  Service
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(svc Service, fns ...OptionFn) *Component {
	return &Component{svc: svc, opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns the net/http handler.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return HandlerWithOptions(nil, DefaultOptions())
	}
	return HandlerWithOptions(c.svc, c.opts)
}

// RegisterRoutes registers the component handler on mux.
func (c *Component) RegisterRoutes(mux Mux) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, nil)
	}
	return RegisterRoutesWithOptions(mux, c.svc, c.opts)
}
