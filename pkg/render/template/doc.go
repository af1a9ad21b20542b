// Package template defines the template engine seam HTML renderers render
// through. Adapters live in subpackages.
package template
