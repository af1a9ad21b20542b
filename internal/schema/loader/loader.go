package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	pkgschema "github.com/goliatone/go-mdaform/pkg/schema"
)

// maxDocumentSize bounds how much of a schema document is read.
const maxDocumentSize = 8 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader implements pkgschema.Loader for file, fs.FS and URL sources.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ pkgschema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options. URL sources stay disabled
// unless a client or the HTTP fallback is configured.
func New(options pkgschema.LoaderOptions) *Loader {
	l := &Loader{
		files:   options.FileSystem,
		timeout: options.RequestTimeout,
	}
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if l.timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = l.timeout
		}
		l.client = &clone
	case options.AllowHTTPFallback:
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads the document behind src. A missing file surfaces as
// pkgschema.ErrSourceNotFound so callers can choose to start from an empty
// schema.
func (l *Loader) Load(ctx context.Context, src pkgschema.Source) (pkgschema.Document, error) {
	if src == nil {
		return pkgschema.Document{}, errors.New("schema loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgschema.Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case pkgschema.SourceKindFile:
		data, err = readFile(src.Location())
	case pkgschema.SourceKindFS:
		data, err = readFS(l.files, src.Location())
	case pkgschema.SourceKindURL:
		if l.client == nil {
			return pkgschema.Document{}, errors.New("schema loader: http support disabled")
		}
		data, err = fetch(ctx, l.client, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", pkgschema.ErrSourceNotFound, err)
		}
		return pkgschema.Document{}, fmt.Errorf("schema loader: %s: %w", src.Location(), err)
	}

	return pkgschema.NewDocument(src, bytes.TrimPrefix(data, utf8BOM))
}
