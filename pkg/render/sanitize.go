package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans a submitted value before it is validated and stored.
type Sanitizer interface {
	Sanitize(value string) string
}

// SanitizerFunc adapts a function into a Sanitizer.
type SanitizerFunc func(string) string

// Sanitize calls the underlying function.
func (fn SanitizerFunc) Sanitize(value string) string {
	return fn(value)
}

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// StripMarkup removes every HTML element from submitted text, dropping the
// content of script and style blocks. Entities are decoded again so plain
// text such as "a < b" survives unchanged; renderers escape on output. Text
// that parses as a tag, such as "a<b and c>d", is removed as well, so the
// sanitizer is opt-in.
func StripMarkup() Sanitizer {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return SanitizerFunc(func(value string) string {
		if !strings.ContainsAny(value, "<>&") {
			return value
		}
		return html.UnescapeString(strictPolicy.Sanitize(value))
	})
}

// SanitizeValues applies s to every value, returning a new map.
func SanitizeValues(s Sanitizer, values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if s != nil {
			v = s.Sanitize(v)
		}
		out[k] = v
	}
	return out
}
