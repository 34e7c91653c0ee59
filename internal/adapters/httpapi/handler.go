// Package httpapi serves the request dispatcher over plain HTTP for local
// development and container deployments.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"productinventory/internal/dispatch"
)

// MaxBodyBytes bounds request bodies read by Handler.
const MaxBodyBytes = 1 << 20

// Dispatcher is the part of dispatch.Dispatcher the handler needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Response
}

// Handler converts HTTP requests into dispatch descriptors and writes the
// dispatcher's response back verbatim.
type Handler struct {
	Dispatcher Dispatcher
}

// NewHandler constructs an HTTP handler over d.
func NewHandler(d Dispatcher) *Handler {
	return &Handler{Dispatcher: d}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		if tooLarge := new(*http.MaxBytesError); errors.As(err, tooLarge) {
			writeRaw(w, http.StatusRequestEntityTooLarge, `{"message":"Invalid request body","error":"body too large"}`)
			return
		}
		writeRaw(w, http.StatusBadRequest, `{"message":"Invalid request body","error":"body could not be read"}`)
		return
	}
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)

	resp := h.Dispatcher.Dispatch(dispatch.WithRequestID(r.Context(), id), dispatch.Request{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		QueryStringParameters: firstValues(r),
		Body:                  string(body),
	})
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = io.WriteString(w, resp.Body)
	}
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func firstValues(r *http.Request) map[string]string {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	out := make(map[string]string, len(query))
	for k, vs := range query {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// NewRouter serves /metrics from gatherer when it is non-nil. Every other
// request reaches the dispatcher with its path exactly as received.
func NewRouter(d Dispatcher, gatherer prometheus.Gatherer) http.Handler {
	h := NewHandler(d)
	if gatherer == nil {
		return h
	}
	metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			metrics.ServeHTTP(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
