// Package dispatch routes normalized product inventory requests to the CRUD
// operations backed by an item store.
package dispatch

// Request is the normalized invocation descriptor.
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	Path                  string            `json:"path"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Body                  string            `json:"body,omitempty"`
}

// Response is the normalized result descriptor. Body is serialized JSON or
// empty.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body,omitempty"`
}
