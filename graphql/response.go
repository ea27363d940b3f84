package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/net/http/httpguts"
)

// ContentTypeJSON is the Content-Type of every successful GraphQL response.
const ContentTypeJSON = "application/json; charset=utf-8"

// Response is the result of executing one GraphQL request.
type Response struct {
	Data       any            `json:"data"`
	Errors     gqlerror.List  `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	// CacheControl and Headers are transport hints and are never serialized.
	CacheControl CacheControl `json:"-"`
	Headers      http.Header  `json:"-"`
}

// ErrorResult builds a response that carries only errors.
func ErrorResult(errs ...*gqlerror.Error) Response {
	return Response{Errors: errs}
}

// IsOK reports whether execution produced no errors.
func (r Response) IsOK() bool {
	return len(r.Errors) == 0
}

// BatchResponse holds the results of a BatchRequest, in request order.
type BatchResponse struct {
	Responses []Response
	Batch     bool
}

// SingleResponse wraps one response as a non-batch BatchResponse.
func SingleResponse(resp Response) BatchResponse {
	return BatchResponse{Responses: []Response{resp}}
}

// IsOK is true when every response in the batch succeeded.
func (b BatchResponse) IsOK() bool {
	for _, resp := range b.Responses {
		if !resp.IsOK() {
			return false
		}
	}
	return true
}

// CacheControl is the most conservative hint across all responses.
func (b BatchResponse) CacheControl() CacheControl {
	if len(b.Responses) == 0 {
		return CacheControl{}
	}
	cc := b.Responses[0].CacheControl
	for _, resp := range b.Responses[1:] {
		cc = cc.Merge(resp.CacheControl)
	}
	return cc
}

// HTTPHeaders collects the engine supplied headers of all responses.
func (b BatchResponse) HTTPHeaders() http.Header {
	header := make(http.Header)
	for _, resp := range b.Responses {
		for key, values := range resp.Headers {
			key = http.CanonicalHeaderKey(key)
			header[key] = append(header[key], values...)
		}
	}
	return header
}

// MarshalJSON writes a single response as an object and a batch as an array.
func (b BatchResponse) MarshalJSON() ([]byte, error) {
	if !b.Batch && len(b.Responses) == 1 {
		return json.Marshal(b.Responses[0])
	}
	responses := b.Responses
	if responses == nil {
		responses = []Response{}
	}
	return json.Marshal(responses)
}

// ToResponse converts an execution result into an HTTP response.
//
// The status is 200 even when the GraphQL errors array is not empty. Content-Type is always
// ContentTypeJSON. A Cache-Control header is only sent when every response succeeded and
// the engine supplied a hint. Engine headers override everything except Content-Type, and an
// engine Cache-Control is dropped as well when any response failed.
//
// A result that cannot be serialized yields a 500 response.
//
// Example usage:
//
//	resp := graphql.ToResponse(graphql.Execute(ctx, executor, batch))
func ToResponse(result BatchResponse) HTTPResponse {
	body, err := json.Marshal(result)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, serializationErrorType,
			fmt.Sprintf("failed to serialize GraphQL response: %v", err))
	}

	header := make(http.Header)
	ok := result.IsOK()
	if ok {
		if value, set := result.CacheControl().Value(); set && httpguts.ValidHeaderFieldValue(value) {
			header.Set("Cache-Control", value)
		}
	}

	for key, values := range result.HTTPHeaders() {
		// A failed result must never be cached, whoever asks for it.
		if key == "Content-Type" || (key == "Cache-Control" && !ok) || !validHeader(key, values) {
			continue
		}
		header[key] = values
	}
	header.Set("Content-Type", ContentTypeJSON)

	return HTTPResponse{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       body,
	}
}

func validHeader(key string, values []string) bool {
	if !httpguts.ValidHeaderFieldName(key) || len(values) == 0 {
		return false
	}
	for _, value := range values {
		if !httpguts.ValidHeaderFieldValue(value) {
			return false
		}
	}
	return true
}
