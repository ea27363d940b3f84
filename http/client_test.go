package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRequestPostsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		var req GraphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "{ __typename }", req.Query)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"},"errors":[{"message":"partial","path":["a",0]}]}`)
	}))
	defer server.Close()

	client := NewClient()
	var res GraphQLResponse[json.RawMessage]
	err := client.MakeRequest(context.Background(), http.MethodPost, server.URL, &res,
		GraphQLRequest{Query: "{ __typename }"},
		map[string]string{"page": "1"},
		map[string]string{"Authorization": "Bearer token"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"__typename":"Query"}`, string(res.Data))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "partial", res.Errors[0].Message)
	assert.Equal(t, "a[0]", res.Errors[0].Path.String())
}

func TestMakeRequestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `upstream down`)
	}))
	defer server.Close()

	var res map[string]any
	err := NewClient().MakeRequest(context.Background(), http.MethodGet, server.URL, &res, nil, nil, nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", string(statusErr.Body))
}

func TestMakeRequestSigner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "signed:7", r.Header.Get("X-Signature"))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	signer := func(req *http.Request, body []byte) error {
		req.Header.Set("X-Signature", "signed:"+string(rune('0'+len(body))))
		return nil
	}

	var res map[string]any
	err := NewClient(WithSigner(signer)).MakeRequest(context.Background(), http.MethodPost, server.URL, &res, "abcde", nil, nil)
	require.NoError(t, err)
}

func TestMakeRequestSignerFailure(t *testing.T) {
	signer := func(*http.Request, []byte) error { return errors.New("no credentials") }

	var res map[string]any
	err := NewClient(WithSigner(signer)).MakeRequest(context.Background(), http.MethodGet, "http://127.0.0.1:1", &res, nil, nil, nil)
	assert.ErrorContains(t, err, "no credentials")
}

func TestMakeRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	var res map[string]any
	err := NewClient(WithTimeout(20*time.Millisecond)).MakeRequest(context.Background(), http.MethodGet, server.URL, &res, nil, nil, nil)
	assert.Error(t, err)
}
