package dispatch

import (
	"encoding/json"
	"net/http"

	"productinventory/internal/item"
)

const (
	contentTypeJSON = "application/json"

	msgInternalError   = "Internal Server Error"
	msgInvalidID       = "Invalid productid format"
	msgInvalidBody     = "Invalid request body"
	msgInvalidField    = "Invalid updateKey"
	msgProductNotFound = "Product not found"
	msgSuccess         = "SUCCESS"
	routeNotFoundBody  = "404 Not Found"
)

// encodeFailureBody is sent when a response value cannot be serialized.
const encodeFailureBody = `{"message":"Internal Server Error","error":"response encoding failed"}`

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type saveBody struct {
	Operation string    `json:"Operation"`
	Message   string    `json:"Message"`
	Item      item.Item `json:"Item"`
}

type updateBody struct {
	Operation         string    `json:"Operation"`
	Message           string    `json:"Message"`
	UpdatedAttributes item.Item `json:"UpdatedAttributes"`
}

type deleteBody struct {
	Operation string    `json:"Operation"`
	Message   string    `json:"Message"`
	Item      item.Item `json:"Item,omitempty"`
}

type listBody struct {
	Products []item.Item `json:"products"`
}

// buildResponse serializes body as JSON. A nil body yields an empty Body.
func buildResponse(status int, body any) Response {
	resp := Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
	}
	if body == nil {
		return resp
	}
	data, err := json.Marshal(body)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		resp.Body = encodeFailureBody
		return resp
	}
	resp.Body = string(data)
	return resp
}

func errorResponse(status int, message string, err error) Response {
	body := errorBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	return buildResponse(status, body)
}
