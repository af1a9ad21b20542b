package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/openapi"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/store"
	"github.com/goliatone/go-mdaform/pkg/validation"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

// Service is the subset of the orchestrator the handler calls.
type Service interface {
	Schema() *model.Schema
	Form(module, form string) (*model.Form, error)
	Submit(ctx context.Context, req orchestrator.SubmitRequest) (orchestrator.SubmitResult, error)
	Records(ctx context.Context, module, form string) ([]store.Record, error)
	Delete(ctx context.Context, module, form, id string) (bool, error)
	Export(ctx context.Context, w io.Writer, module, form string) error
	Render(ctx context.Context, req orchestrator.RenderRequest) (orchestrator.Output, error)
}

var _ Service = (*orchestrator.Orchestrator)(nil)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type dataResponse struct {
	Data  any      `json:"data"`
	Total *float64 `json:"total,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors validation.Errors `json:"errors"`
}

// submission is the JSON request body for the submit route.
type submission struct {
	Values  map[string]any `json:"values"`
	Details [][]any        `json:"details"`
}

// NewHandler builds the records handler for svc with default options plus any
// overrides.
func NewHandler(svc Service, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(svc, NewOptions(fns...))
}

// HandlerWithOptions builds the handler from a pre-constructed Options value.
func HandlerWithOptions(svc Service, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := &handler{svc: svc, opts: opts}

	base := opts.BasePath
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/schema", h.schema)
	mux.HandleFunc("GET "+base+"/openapi.json", h.openAPI)
	mux.HandleFunc("GET "+base+"/{module}/{form}", h.form)
	mux.HandleFunc("GET "+base+"/{module}/{form}/records", h.list)
	mux.HandleFunc("POST "+base+"/{module}/{form}/records", h.submit)
	mux.HandleFunc("DELETE "+base+"/{module}/{form}/records/{id}", h.delete)
	mux.HandleFunc("GET "+base+"/{module}/{form}/export", h.export)
	mux.HandleFunc("GET "+base+"/{module}/{form}/render", h.render)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if svc == nil {
			writeError(w, http.StatusServiceUnavailable, errors.New("records: service unavailable"))
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		mux.ServeHTTP(w, r)
	})
}

type handler struct {
	svc  Service
	opts Options
}

func (h *handler) schema(w http.ResponseWriter, r *http.Request) {
	current := h.svc.Schema()
	if current == nil {
		writeError(w, http.StatusServiceUnavailable, orchestrator.ErrNoSchema)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: current})
}

func (h *handler) openAPI(w http.ResponseWriter, r *http.Request) {
	current := h.svc.Schema()
	if current == nil {
		writeError(w, http.StatusServiceUnavailable, orchestrator.ErrNoSchema)
		return
	}
	doc, err := openapi.Generate(r.Context(), current, openapi.WithBasePath(h.opts.BasePath))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handler) form(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Form(r.PathValue("module"), r.PathValue("form"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: form})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	module, name := r.PathValue("module"), r.PathValue("form")
	form, err := h.svc.Form(module, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.svc.Records(r.Context(), module, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		raw, err := store.EncodeRecord(record, form.Columns())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		data = append(data, raw)
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: data})
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	module, name := r.PathValue("module"), r.PathValue("form")
	form, err := h.svc.Form(module, name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	values, rows, err := decodeSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Submit(r.Context(), orchestrator.SubmitRequest{
		Module: module,
		Form:   name,
		Values: values,
		Rows:   rows,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !result.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: result.Errors})
		return
	}

	raw, err := store.EncodeRecord(result.Record, form.Columns())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	resp := dataResponse{Data: raw}
	if form.HasDetails() {
		total := result.Total
		resp.Total = &total
	}
	writeJSON(w, status, resp)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := h.svc.Delete(r.Context(), r.PathValue("module"), r.PathValue("form"), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, fmt.Errorf("records: %w: id %q", store.ErrRecordNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	module, name := r.PathValue("module"), r.PathValue("form")
	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), &buf, module, name); err != nil {
		h.fail(w, r, err)
		return
	}
	filename := strings.TrimSuffix(store.CollectionFileName(module, name), ".json") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) render(w http.ResponseWriter, r *http.Request) {
	module, name := r.PathValue("module"), r.PathValue("form")
	query := r.URL.Query()

	target := visibility.Desktop
	if raw := query.Get("target"); raw != "" {
		parsed, err := visibility.ParseTarget(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		target = parsed
	}

	out, err := h.svc.Render(r.Context(), orchestrator.RenderRequest{
		Module:       module,
		Form:         name,
		Renderer:     h.opts.Renderer,
		RecordID:     query.Get("id"),
		ThemeName:    query.Get("theme"),
		ThemeVariant: query.Get("variant"),
		Options: render.RenderOptions{
			Action: h.opts.BasePath + "/" + url.PathEscape(module) + "/" + url.PathEscape(name) + "/records",
			Target: target,
		},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

// fail maps service errors onto status codes. Unknown failures are logged and
// answered without detail.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		writeError(w, httpErr.StatusCode(), err)
	case errors.Is(err, model.ErrSchemaFormat), errors.Is(err, store.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, orchestrator.ErrNoSchema):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.opts.Logger.Error("records: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
	}
}

// decodeSubmission reads either a JSON submission or a form-encoded post.
func decodeSubmission(r *http.Request) (map[string]string, []model.DetailRow, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 10); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, fmt.Errorf("records: parse form: %w", err)
		}
		return formSubmission(r.PostForm)
	default:
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var body submission
		if err := dec.Decode(&body); err != nil {
			return nil, nil, fmt.Errorf("records: decode body: %w", err)
		}
		values := make(map[string]string, len(body.Values))
		for k, v := range body.Values {
			values[k] = scalarString(v)
		}
		var rows []model.DetailRow
		for _, cells := range body.Details {
			row := make(model.DetailRow, len(cells))
			for i, cell := range cells {
				row[i] = scalarString(cell)
			}
			rows = append(rows, row)
		}
		return values, rows, nil
	}
}

// formSubmission splits posted keys into master values and details[r][c]
// cells. The _module and _form routing inputs are dropped.
func formSubmission(form url.Values) (map[string]string, []model.DetailRow, error) {
	values := make(map[string]string, len(form))
	cells := make(map[int]map[int]string)
	for key, list := range form {
		value := ""
		if len(list) > 0 {
			value = list[0]
		}
		if row, col, ok := parseCellName(key); ok {
			if cells[row] == nil {
				cells[row] = make(map[int]string)
			}
			cells[row][col] = value
			continue
		}
		if strings.HasPrefix(key, "details[") {
			return nil, nil, fmt.Errorf("records: malformed detail cell %q", key)
		}
		if key == "_module" || key == "_form" {
			continue
		}
		values[key] = value
	}

	if len(cells) == 0 {
		return values, nil, nil
	}
	rowIdx := make([]int, 0, len(cells))
	for row := range cells {
		rowIdx = append(rowIdx, row)
	}
	sort.Ints(rowIdx)
	rows := make([]model.DetailRow, 0, len(rowIdx))
	for _, idx := range rowIdx {
		width := 0
		for col := range cells[idx] {
			if col+1 > width {
				width = col + 1
			}
		}
		row := make(model.DetailRow, width)
		for col, value := range cells[idx] {
			row[col] = value
		}
		if row.Empty() {
			continue
		}
		rows = append(rows, row)
	}
	return values, rows, nil
}

// parseCellName parses "details[r][c]" with non-negative indices.
func parseCellName(key string) (int, int, bool) {
	rest, ok := strings.CutPrefix(key, "details[")
	if !ok {
		return 0, 0, false
	}
	rowRaw, rest, ok := strings.Cut(rest, "][")
	if !ok {
		return 0, 0, false
	}
	colRaw, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return 0, 0, false
	}
	row, err := strconv.Atoi(rowRaw)
	if err != nil || row < 0 {
		return 0, 0, false
	}
	col, err := strconv.Atoi(colRaw)
	if err != nil || col < 0 || col > maxColumns {
		return 0, 0, false
	}
	return row, col, true
}

const maxColumns = 256

func scalarString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(raw)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
