// Package engine adapts a graph-gophers/graphql-go schema to graphql.Executor.
package engine

import (
	"context"
	"net/http"

	gqlgo "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/sync/errgroup"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
)

// Executor runs requests on a parsed schema. The schema is read-only after parsing, so one
// Executor serves all concurrent invocations.
type Executor struct {
	schema       *gqlgo.Schema
	concurrency  int
	cacheControl graphql.CacheControl
	headers      http.Header
}

type Option func(*Executor)

// WithBatchConcurrency bounds how many requests of one batch run at once. Defaults to 1.
func WithBatchConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithCacheControl attaches cc to every successful result.
func WithCacheControl(cc graphql.CacheControl) Option {
	return func(e *Executor) {
		e.cacheControl = cc
	}
}

// WithResponseHeader adds a header to every result.
func WithResponseHeader(key, value string) Option {
	return func(e *Executor) {
		e.headers.Add(key, value)
	}
}

func New(schema *gqlgo.Schema, opts ...Option) *Executor {
	e := &Executor{
		schema:      schema,
		concurrency: 1,
		headers:     make(http.Header),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one request. ctx cancellation is observed by the resolvers.
func (e *Executor) Execute(ctx context.Context, req graphql.Request) graphql.Response {
	res := e.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	resp := graphql.Response{
		Data:       res.Data,
		Errors:     convertErrors(res.Errors),
		Extensions: res.Extensions,
	}
	if resp.IsOK() {
		resp.CacheControl = e.cacheControl
	}
	if len(e.headers) > 0 {
		resp.Headers = e.headers.Clone()
	}
	return resp
}

// ExecuteBatch runs the requests concurrently. Responses keep the order of reqs.
func (e *Executor) ExecuteBatch(ctx context.Context, reqs []graphql.Request) []graphql.Response {
	responses := make([]graphql.Response, len(reqs))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			responses[i] = e.Execute(ctx, req)
			return nil
		})
	}
	// Execute never returns an error
	_ = g.Wait()

	return responses
}

func convertErrors(errs []*gqlerrors.QueryError) gqlerror.List {
	if len(errs) == 0 {
		return nil
	}

	list := make(gqlerror.List, 0, len(errs))
	for _, qe := range errs {
		ge := &gqlerror.Error{
			Err:        qe.ResolverError,
			Message:    qe.Message,
			Path:       convertPath(qe.Path),
			Extensions: qe.Extensions,
			Rule:       qe.Rule,
		}
		for _, loc := range qe.Locations {
			ge.Locations = append(ge.Locations, gqlerror.Location{Line: loc.Line, Column: loc.Column})
		}
		list = append(list, ge)
	}
	return list
}

func convertPath(path []any) ast.Path {
	if len(path) == 0 {
		return nil
	}

	converted := make(ast.Path, 0, len(path))
	for _, elem := range path {
		switch v := elem.(type) {
		case string:
			converted = append(converted, ast.PathName(v))
		case int:
			converted = append(converted, ast.PathIndex(v))
		}
	}
	return converted
}
