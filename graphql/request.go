package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Request is a single GraphQL operation as carried by the GraphQL-over-HTTP envelope.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// BatchRequest holds either exactly one request or an ordered batch of them.
// A batch is only produced from a JSON array body.
type BatchRequest struct {
	Requests []Request
	Batch    bool
}

// SingleRequest wraps one request as a non-batch BatchRequest.
func SingleRequest(req Request) BatchRequest {
	return BatchRequest{Requests: []Request{req}}
}

// Single unwraps a non-batch request. Batches are rejected.
func (b BatchRequest) Single() (Request, error) {
	if b.Batch || len(b.Requests) != 1 {
		return Request{}, newTranslationError(KindMalformedEnvelope, "batch requests are not supported", nil)
	}
	return b.Requests[0], nil
}

// Translate converts an HTTP-shaped event into a GraphQL request or batch.
//
// GET requests are read from the query string and always produce a single request.
// POST requests are read from the JSON body: an object produces a single request and an
// array produces a batch. Any other method fails with ErrUnsupportedMethod.
//
// Returns a *TranslationError on failure. Translate is pure: the same event always
// produces an equal result.
//
// Example usage:
//
//	batch, err := graphql.Translate(event)
//	if err != nil {
//		return graphql.ErrorResponse(err)
//	}
//	return graphql.ToResponse(graphql.Execute(ctx, executor, batch))
func Translate(event RawEvent) (BatchRequest, error) {
	switch strings.ToUpper(event.Method) {
	case http.MethodGet:
		req, err := queryToRequest(event)
		if err != nil {
			return BatchRequest{}, err
		}
		return SingleRequest(req), nil
	case http.MethodPost:
		if !event.HasBody() {
			return BatchRequest{}, ErrEmptyBody
		}
		return parseBody(event.Body)
	default:
		return BatchRequest{}, ErrUnsupportedMethod
	}
}

// TranslateSingle is Translate for handlers that do not accept batches.
func TranslateSingle(event RawEvent) (Request, error) {
	batch, err := Translate(event)
	if err != nil {
		return Request{}, err
	}
	return batch.Single()
}

func queryToRequest(event RawEvent) (Request, error) {
	values := event.Query["query"]
	if len(values) == 0 {
		return Request{}, ErrUnparseableQuery
	}

	var req Request
	if event.Context.JoinsMultiValueParams() {
		req.Query = strings.Join(values, ",")
	} else {
		req.Query = values[0]
	}

	if operationName := event.Query.Get("operationName"); operationName != "" {
		req.OperationName = operationName
	}

	if variables, ok := event.Query["variables"]; ok && len(variables) > 0 {
		// Unparseable variables are dropped rather than rejected.
		var parsed map[string]any
		if err := json.Unmarshal([]byte(variables[0]), &parsed); err != nil || parsed == nil {
			parsed = map[string]any{}
		}
		req.Variables = parsed
	}

	return req, nil
}

type wireRequest struct {
	Query         *string         `json:"query"`
	OperationName *string         `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
	Extensions    json.RawMessage `json:"extensions"`
}

func parseBody(body []byte) (BatchRequest, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return BatchRequest{}, newTranslationError(KindMalformedJSON, err.Error(), err)
	}

	switch raw[0] {
	case '{':
		req, err := parseRequest(raw)
		if err != nil {
			return BatchRequest{}, err
		}
		return SingleRequest(req), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return BatchRequest{}, newTranslationError(KindMalformedJSON, err.Error(), err)
		}
		batch := BatchRequest{Requests: make([]Request, 0, len(items)), Batch: true}
		for i, item := range items {
			req, err := parseRequest(item)
			if err != nil {
				err.Detail = fmt.Sprintf("request %d: %s", i, err.Error())
				return BatchRequest{}, err
			}
			batch.Requests = append(batch.Requests, req)
		}
		return batch, nil
	default:
		return BatchRequest{}, newTranslationError(KindMalformedEnvelope, "expected a JSON object or array of objects", nil)
	}
}

func parseRequest(raw json.RawMessage) (Request, *TranslationError) {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 || raw[0] != '{' {
		return Request{}, newTranslationError(KindMalformedEnvelope, "request must be a JSON object", nil)
	}

	var wire wireRequest
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Request{}, newTranslationError(KindMalformedEnvelope, err.Error(), err)
	}
	if wire.Query == nil {
		return Request{}, newTranslationError(KindMalformedEnvelope, `missing field "query"`, nil)
	}

	req := Request{Query: *wire.Query}
	if wire.OperationName != nil {
		req.OperationName = *wire.OperationName
	}

	var err *TranslationError
	if req.Variables, err = parseObject("variables", wire.Variables); err != nil {
		return Request{}, err
	}
	if req.Extensions, err = parseObject("extensions", wire.Extensions); err != nil {
		return Request{}, err
	}
	return req, nil
}

// parseObject decodes an optional JSON object field. Absent and null both yield nil.
func parseObject(field string, raw json.RawMessage) (map[string]any, *TranslationError) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, newTranslationError(KindMalformedEnvelope, fmt.Sprintf("%q must be a JSON object", field), nil)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, newTranslationError(KindMalformedEnvelope, err.Error(), err)
	}
	return obj, nil
}
