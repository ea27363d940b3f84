// Package graphql translates HTTP-shaped function events into GraphQL-over-HTTP requests
// and execution results back into HTTP responses.
//
// A handler is three calls:
//
//	batch, err := graphql.Translate(event)
//	if err != nil {
//		return graphql.ErrorResponse(err)
//	}
//	return graphql.ToResponse(graphql.Execute(ctx, executor, batch))
//
// Translation failures are client errors and never reach the engine. Execution errors are
// part of a 200 response.
package graphql
