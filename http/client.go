package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Signer authenticates an outgoing request. body is the exact payload that will be sent.
type Signer func(req *http.Request, body []byte) error

// Client sends JSON requests and decodes JSON responses.
type Client struct {
	httpClient *http.Client
	signer     Signer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall timeout of a single request. Defaults to 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithSigner signs every request right before it is sent.
func WithSigner(signer Signer) Option {
	return func(c *Client) {
		c.signer = signer
	}
}

// NewClient creates a Client.
//
// Example usage:
//
//	client := NewClient(WithTimeout(10 * time.Second))
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the server answers with a non-2xx status. Body holds the
// response body so callers can inspect error payloads.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP Error: %s", e.Status)
}

// MakeRequest sends an HTTP request with the specified method, URL, and parameters,
// then unmarshals the JSON response into res.
//
// Parameters:
//   - ctx: Cancels the request when done
//   - method: HTTP method (GET, POST, PUT, PATCH, DELETE, etc.)
//   - url: The target URL
//   - res: Pointer to the value the response is unmarshaled into
//   - body: Request body (will be JSON marshaled), pass nil for GET requests
//   - params: Query parameters as key-value pairs
//   - headers: HTTP headers as key-value pairs
//
// Returns an error if the request fails, JSON unmarshaling fails, or the status code is not
// 2xx. In the last case the error is a *StatusError.
//
// Example usage:
//
//	var out GraphQLResponse[json.RawMessage]
//	req := GraphQLRequest{Query: "{ __typename }"}
//	err := client.MakeRequest(ctx, "POST", "https://api.example.com/graphql", &out, req, nil, nil)
func (c *Client) MakeRequest(ctx context.Context, method string, url string, res any, body any, params map[string]string, headers map[string]string) error {
	var payload []byte
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("Error Marshaling Request Body: %w", err)
		}
		payload = jsonBody
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("Error Building Request: %w", err)
	}

	if len(params) > 0 {
		query := req.URL.Query()
		for key, value := range params {
			query.Add(key, value)
		}
		req.URL.RawQuery = query.Encode()
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if c.signer != nil {
		if err := c.signer(req, payload); err != nil {
			return fmt.Errorf("Error Signing Request: %w", err)
		}
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Error Making Request: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("Error Reading Response Body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &StatusError{
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       responseBody,
		}
	}

	if err = json.Unmarshal(responseBody, res); err != nil {
		return fmt.Errorf("Error Unmarshaling Response: %w", err)
	}

	return nil
}
