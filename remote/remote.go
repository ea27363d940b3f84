// Package remote executes GraphQL requests against an upstream GraphQL-over-HTTP endpoint.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
	gqlhttp "github.com/jkrebs-tr/graphqlLambda/http"
	ratelimiter "github.com/jkrebs-tr/graphqlLambda/rateLimiter"
)

// ErrorCode is set as extensions.code on errors produced when the upstream cannot be reached.
const ErrorCode = "UPSTREAM_ERROR"

// Executor forwards requests to an upstream GraphQL endpoint. It implements graphql.Executor.
type Executor struct {
	url          string
	client       *gqlhttp.Client
	clientOpts   []gqlhttp.Option
	limiter      *ratelimiter.RateLimiter
	headers      map[string]string
	cacheControl graphql.CacheControl
	logger       *logrus.Logger
}

type Option func(*Executor)

// WithRateLimit throttles upstream calls to rps requests per second.
func WithRateLimit(rps int) Option {
	return func(e *Executor) {
		if rps > 0 {
			e.limiter = ratelimiter.NewRateLimiter(rps)
		}
	}
}

// WithTimeout bounds a single upstream call.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.clientOpts = append(e.clientOpts, gqlhttp.WithTimeout(timeout))
	}
}

// WithHTTPClient sends upstream calls through client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) {
		e.clientOpts = append(e.clientOpts, gqlhttp.WithHTTPClient(client))
	}
}

// WithSigner authenticates every upstream call, see NewSigV4Signer.
func WithSigner(signer gqlhttp.Signer) Option {
	return func(e *Executor) {
		e.clientOpts = append(e.clientOpts, gqlhttp.WithSigner(signer))
	}
}

// WithHeaders adds static headers, e.g. an API key, to every upstream call.
func WithHeaders(headers map[string]string) Option {
	return func(e *Executor) {
		e.headers = headers
	}
}

// WithCacheControl attaches cc to every successful result.
func WithCacheControl(cc graphql.CacheControl) Option {
	return func(e *Executor) {
		e.cacheControl = cc
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an Executor for the endpoint at url.
func New(url string, opts ...Option) *Executor {
	e := &Executor{
		url:    url,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.client = gqlhttp.NewClient(e.clientOpts...)
	return e
}

// Execute sends one request upstream. Transport failures are returned as GraphQL errors.
func (e *Executor) Execute(ctx context.Context, req graphql.Request) graphql.Response {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return upstreamError(err)
		}
	}

	var res gqlhttp.GraphQLResponse[json.RawMessage]
	err := e.client.MakeRequest(ctx, http.MethodPost, e.url, &res, gqlhttp.GraphQLRequest{
		Query:         req.Query,
		OperationName: req.OperationName,
		Variables:     req.Variables,
		Extensions:    req.Extensions,
	}, nil, e.headers)
	if err != nil {
		var statusErr *gqlhttp.StatusError
		if !errors.As(err, &statusErr) || !decodeGraphQLBody(statusErr.Body, &res) {
			e.logger.WithError(err).WithField("operationName", req.OperationName).Warn("Upstream GraphQL request failed")
			return upstreamError(err)
		}
	}

	resp := graphql.Response{
		Data:       res.Data,
		Errors:     res.Errors,
		Extensions: res.Extensions,
	}
	if resp.IsOK() {
		resp.CacheControl = e.cacheControl
	}
	return resp
}

// ExecuteBatch sends the requests upstream one at a time, in order.
func (e *Executor) ExecuteBatch(ctx context.Context, reqs []graphql.Request) []graphql.Response {
	return graphql.ExecuteSequential(ctx, reqs, e.Execute)
}

// Close releases the rate limiter.
func (e *Executor) Close() {
	if e.limiter != nil {
		e.limiter.Stop()
	}
}

// decodeGraphQLBody accepts error statuses whose body is still a GraphQL response.
func decodeGraphQLBody(body []byte, res *gqlhttp.GraphQLResponse[json.RawMessage]) bool {
	if err := json.Unmarshal(body, res); err != nil {
		return false
	}
	return len(res.Errors) > 0
}

func upstreamError(err error) graphql.Response {
	return graphql.ErrorResult(&gqlerror.Error{
		Message:    "upstream request failed: " + err.Error(),
		Extensions: map[string]any{"code": ErrorCode},
	})
}
