package graphql

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// echoExecutor answers every request with its query as data, or with an error when the
// query is "fail".
type echoExecutor struct {
	cache   CacheControl
	headers http.Header
}

func (e echoExecutor) Execute(_ context.Context, req Request) Response {
	if req.Query == "fail" {
		return ErrorResult(gqlerror.Errorf("cannot query %q", req.Query))
	}
	return Response{
		Data:         map[string]any{"query": req.Query},
		CacheControl: e.cache,
		Headers:      e.headers,
	}
}

func (e echoExecutor) ExecuteBatch(ctx context.Context, reqs []Request) []Response {
	return ExecuteSequential(ctx, reqs, e.Execute)
}

func TestToResponseSingle(t *testing.T) {
	result := SingleResponse(Response{Data: json.RawMessage(`{"__typename":"Query"}`)})

	resp := ToResponse(result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ContentTypeJSON, resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"__typename":"Query"}}`, string(resp.Body))
	assert.NotContains(t, string(resp.Body), "errors")
}

func TestToResponseErrorsAreStillOK(t *testing.T) {
	result := SingleResponse(Response{
		Errors:       gqlerror.List{{Message: "boom", Locations: []gqlerror.Location{{Line: 1, Column: 3}}}},
		Extensions:   map[string]any{"tracing": map[string]any{"version": 1}},
		CacheControl: CacheControl{MaxAge: 60},
	})

	resp := ToResponse(result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Cache-Control"))
	assert.JSONEq(t, `{
		"data": null,
		"errors": [{"message":"boom","locations":[{"line":1,"column":3}]}],
		"extensions": {"tracing":{"version":1}}
	}`, string(resp.Body))
}

func TestToResponseCacheControl(t *testing.T) {
	cases := []struct {
		name string
		cc   CacheControl
		want string
	}{
		{"none", CacheControl{}, ""},
		{"max age", CacheControl{MaxAge: 120}, "max-age=120"},
		{"private", CacheControl{Private: true}, "private"},
		{"private max age", CacheControl{MaxAge: 30, Private: true}, "max-age=30, private"},
		{"no cache", NoCache, "no-cache"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ToResponse(SingleResponse(Response{Data: "ok", CacheControl: tc.cc}))
			assert.Equal(t, tc.want, resp.Header.Get("Cache-Control"))
		})
	}
}

func TestToResponseBatchWithFailure(t *testing.T) {
	exec := echoExecutor{cache: CacheControl{MaxAge: 60}}
	batch, err := Translate(postEvent(`[{"query":"fail"},{"query":"{ ok }"}]`))
	require.NoError(t, err)

	result := Execute(context.Background(), exec, batch)
	assert.False(t, result.IsOK())

	resp := ToResponse(result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Values("Cache-Control"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Len(t, body, 2)
	assert.Contains(t, body[0], "errors")
	assert.Equal(t, map[string]any{"query": "{ ok }"}, body[1]["data"])
}

func TestToResponseBatchOrderAndCache(t *testing.T) {
	result := BatchResponse{
		Batch: true,
		Responses: []Response{
			{Data: 1, CacheControl: CacheControl{MaxAge: 300}},
			{Data: 2, CacheControl: CacheControl{MaxAge: 60}},
			{Data: 3},
		},
	}

	resp := ToResponse(result)
	assert.Equal(t, "max-age=60", resp.Header.Get("Cache-Control"))
	assert.JSONEq(t, `[{"data":1},{"data":2},{"data":3}]`, string(resp.Body))
}

func TestToResponseEmptyBatch(t *testing.T) {
	resp := ToResponse(BatchResponse{Batch: true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", string(resp.Body))
}

func TestToResponseSingleElementBatchIsArray(t *testing.T) {
	resp := ToResponse(BatchResponse{Batch: true, Responses: []Response{{Data: true}}})
	assert.JSONEq(t, `[{"data":true}]`, string(resp.Body))
}

func TestToResponseHeaderPrecedence(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "text/html")
	headers.Set("Cache-Control", "public, max-age=5")
	headers.Set("X-Request-Id", "abc-123")
	headers["x-lower"] = []string{"kept"}
	headers["Bad Header"] = []string{"dropped"}
	headers.Set("X-Bad-Value", "line\nbreak")

	resp := ToResponse(SingleResponse(Response{
		Data:         "ok",
		CacheControl: CacheControl{MaxAge: 60},
		Headers:      headers,
	}))

	assert.Equal(t, ContentTypeJSON, resp.Header.Get("Content-Type"))
	assert.Len(t, resp.Header.Values("Content-Type"), 1)
	assert.Equal(t, "public, max-age=5", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "kept", resp.Header.Get("X-Lower"))
	assert.NotContains(t, resp.Header, "Bad Header")
	assert.Empty(t, resp.Header.Get("X-Bad-Value"))
}

func TestToResponseHeaderPrecedenceOnFailure(t *testing.T) {
	headers := http.Header{}
	headers.Set("Cache-Control", "public, max-age=5")
	headers.Set("X-Request-Id", "abc-123")

	result := BatchResponse{
		Batch: true,
		Responses: []Response{
			{Data: "ok", Headers: headers},
			ErrorResult(gqlerror.Errorf("boom")),
		},
	}

	resp := ToResponse(result)
	assert.Empty(t, resp.Header.Values("Cache-Control"))
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))
	assert.Equal(t, ContentTypeJSON, resp.Header.Get("Content-Type"))
}

func TestToResponseBatchHeadersMerged(t *testing.T) {
	result := BatchResponse{
		Batch: true,
		Responses: []Response{
			{Data: 1, Headers: http.Header{"Set-Cookie": {"a=1"}}},
			{Data: 2, Headers: http.Header{"Set-Cookie": {"b=2"}}},
		},
	}
	resp := ToResponse(result)
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Header.Values("Set-Cookie"))
}

func TestToResponseSerializationFailure(t *testing.T) {
	cases := []Response{
		{Data: json.RawMessage(`{"broken"`)},
		{Data: math.Inf(1)},
		{Data: make(chan int)},
	}
	for _, result := range cases {
		resp := ToResponse(SingleResponse(result))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(resp.Body, &body))
		assert.Equal(t, "SerializationError", body["errorType"])
		assert.NotEmpty(t, body["errorMessage"])
	}
}

func TestCacheControlMerge(t *testing.T) {
	cases := []struct {
		a, b, want CacheControl
	}{
		{CacheControl{}, CacheControl{}, CacheControl{}},
		{CacheControl{MaxAge: 10}, CacheControl{}, CacheControl{MaxAge: 10}},
		{CacheControl{}, CacheControl{MaxAge: 10}, CacheControl{MaxAge: 10}},
		{CacheControl{MaxAge: 10}, CacheControl{MaxAge: 5}, CacheControl{MaxAge: 5}},
		{CacheControl{MaxAge: 10}, NoCache, NoCache},
		{NoCache, CacheControl{MaxAge: 10, Private: true}, CacheControl{MaxAge: -1, Private: true}},
		{CacheControl{MaxAge: 10, Private: true}, CacheControl{MaxAge: 20}, CacheControl{MaxAge: 10, Private: true}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.a.Merge(tc.b))
		assert.Equal(t, tc.want, tc.b.Merge(tc.a))
	}
}

func TestExecuteRoutesByShape(t *testing.T) {
	exec := echoExecutor{}

	single := Execute(context.Background(), exec, SingleRequest(Request{Query: "{ a }"}))
	assert.False(t, single.Batch)
	require.Len(t, single.Responses, 1)

	batch := Execute(context.Background(), exec, BatchRequest{
		Batch:    true,
		Requests: []Request{{Query: "{ a }"}, {Query: "{ b }"}, {Query: "{ c }"}},
	})
	assert.True(t, batch.Batch)
	require.Len(t, batch.Responses, 3)
	for i, q := range []string{"{ a }", "{ b }", "{ c }"} {
		assert.Equal(t, map[string]any{"query": q}, batch.Responses[i].Data)
	}
}
