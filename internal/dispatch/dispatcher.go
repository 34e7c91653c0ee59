package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"productinventory/internal/logging"
	"productinventory/internal/store/core"
)

// Recorder receives one observation per dispatched request.
type Recorder interface {
	ObserveRequest(route string, status int, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveRequest(string, int, time.Duration) {}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRecorder sets the request metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithMissingAsNotFound makes Get answer 404 for absent keys. By default an
// absent item yields 200 with an empty body.
func WithMissingAsNotFound(enabled bool) Option {
	return func(d *Dispatcher) { d.missingAsNotFound = enabled }
}

// Dispatcher matches requests against a fixed route table. It is safe for
// concurrent use when its store is.
type Dispatcher struct {
	store             core.Store
	logger            *slog.Logger
	recorder          Recorder
	missingAsNotFound bool
	now               func() time.Time
}

// New constructs a Dispatcher over s.
func New(s core.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    s,
		logger:   logging.Discard(),
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type route struct {
	method string
	path   string
	name   string
	handle func(*Dispatcher, context.Context, Request) Response
}

// Evaluated in order, first match wins.
var routes = []route{
	{method: http.MethodGet, path: "/health", name: "health", handle: (*Dispatcher).health},
	{method: http.MethodGet, path: "/product", name: "get_product", handle: (*Dispatcher).getItem},
	{method: http.MethodGet, path: "/products", name: "list_products", handle: (*Dispatcher).listItems},
	{method: http.MethodPost, path: "/product", name: "save_product", handle: (*Dispatcher).saveItem},
	{method: http.MethodPatch, path: "/product", name: "modify_product", handle: (*Dispatcher).modifyItem},
	{method: http.MethodDelete, path: "/product", name: "delete_product", handle: (*Dispatcher).deleteItem},
}

const notFoundRoute = "not_found"

// Dispatch produces exactly one Response for req. Handler failures are
// translated into error responses; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	start := d.now()
	d.log(ctx).InfoContext(ctx, "request_received",
		"method", req.HTTPMethod,
		"path", req.Path,
		"query", req.QueryStringParameters,
		"body", req.Body)

	name := notFoundRoute
	var resp Response
	matched := false
	for _, r := range routes {
		if r.method == req.HTTPMethod && r.path == req.Path {
			name = r.name
			resp = r.handle(d, ctx, req)
			matched = true
			break
		}
	}
	if !matched {
		resp = buildResponse(http.StatusNotFound, routeNotFoundBody)
	}
	d.recorder.ObserveRequest(name, resp.StatusCode, d.now().Sub(start))
	return resp
}

func (d *Dispatcher) storeFailure(ctx context.Context, op string, err error) Response {
	d.log(ctx).ErrorContext(ctx, "operation_failed", "operation", op, "error", err.Error())
	return errorResponse(http.StatusInternalServerError, msgInternalError, err)
}

func (d *Dispatcher) log(ctx context.Context) *slog.Logger {
	if id, ok := RequestID(ctx); ok {
		return d.logger.With("request_id", id)
	}
	return d.logger
}
