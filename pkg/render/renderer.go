package render

import (
	"context"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// Renderer turns a form definition plus per-request state into bytes (HTML,
// JSON collected from a terminal session, and so on).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form *model.Form, options RenderOptions) ([]byte, error)
}
