package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

// RenderOptions carry per-request data. Renderers never mutate the form.
type RenderOptions struct {
	// Module names the module the form belongs to; renderers echo it back in
	// hidden inputs so a submission can be routed.
	Module string
	// Action and Method describe where an HTML form posts. Method defaults to
	// POST.
	Action string
	Method string
	// Target selects which visibility mask position applies. Defaults to
	// desktop.
	Target visibility.Target
	// Values pre-populates controls, keyed by field name. The reserved "id"
	// key marks an edit of a stored record.
	Values map[string]string
	// Rows pre-populates the detail table.
	Rows []model.DetailRow
	// Errors surfaces validation feedback keyed the way
	// validation.Errors.ByField groups it.
	Errors map[string][]string
	// Hidden lists extra hidden inputs such as CSRF tokens.
	Hidden []HiddenField
	// Total is the detail amount total shown under the table.
	Total float64
	// Theme carries resolved partials, tokens and asset URLs. Nil renders
	// the built-in templates unstyled.
	Theme *theme.RendererConfig
}
