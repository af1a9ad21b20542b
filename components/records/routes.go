package records

import (
	"fmt"
	"net/http"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the subtree pattern the handler is registered under.
func MountPath(fns ...OptionFn) string {
	return mountPath(NewOptions(fns...).BasePath)
}

// RegisterRoutes registers the records handler for svc on mux.
func RegisterRoutes(mux Mux, svc Service, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, svc, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers a handler using a pre-built Options
// value and returns the pattern it was mounted on.
func RegisterRoutesWithOptions(mux Mux, svc Service, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("records: missing mux")
	}
	if svc == nil {
		return "", fmt.Errorf("records: missing service")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(opts.BasePath)
	mux.Handle(pattern, HandlerWithOptions(svc, opts))
	return pattern, nil
}

func mountPath(base string) string {
	return base + "/"
}
