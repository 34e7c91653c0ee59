// Package lambda adapts API Gateway proxy events to the request dispatcher.
package lambda

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"productinventory/internal/dispatch"
)

// Dispatcher is the part of dispatch.Dispatcher the adapter needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Response
}

const invalidBase64Body = `{"message":"Invalid request body","error":"body is not valid base64"}`

// Handler returns a function suitable for lambda.Start. It never returns a
// non-nil error: every failure is reported through the response.
func Handler(d Dispatcher) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		ctx = dispatch.WithRequestID(ctx, requestID(ctx, ev))
		req, ok := toRequest(ev)
		if !ok {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       invalidBase64Body,
			}, nil
		}
		resp := d.Dispatch(ctx, req)
		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}, nil
	}
}

func toRequest(ev events.APIGatewayProxyRequest) (dispatch.Request, bool) {
	body := ev.Body
	if ev.IsBase64Encoded && body != "" {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return dispatch.Request{}, false
		}
		body = string(raw)
	}
	return dispatch.Request{
		HTTPMethod:            ev.HTTPMethod,
		Path:                  ev.Path,
		QueryStringParameters: ev.QueryStringParameters,
		Body:                  body,
	}, true
}

// requestID prefers the Lambda invocation id, then the API Gateway one, and
// falls back to a random id outside the Lambda runtime.
func requestID(ctx context.Context, ev events.APIGatewayProxyRequest) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if ev.RequestContext.RequestID != "" {
		return ev.RequestContext.RequestID
	}
	return uuid.NewString()
}
