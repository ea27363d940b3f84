package graphql

import "context"

// Executor is the GraphQL engine seen by this package. Implementations must be safe for
// concurrent use and must return one response per request, in request order.
type Executor interface {
	Execute(ctx context.Context, req Request) Response
	ExecuteBatch(ctx context.Context, reqs []Request) []Response
}

// Execute runs a translated request on the engine. Execution errors are reported inside the
// response, so Execute has no error return.
func Execute(ctx context.Context, executor Executor, req BatchRequest) BatchResponse {
	if !req.Batch && len(req.Requests) == 1 {
		return SingleResponse(executor.Execute(ctx, req.Requests[0]))
	}
	return BatchResponse{
		Responses: executor.ExecuteBatch(ctx, req.Requests),
		Batch:     true,
	}
}

// ExecuteSequential runs the requests one after another with exec. Engines without a
// native batch entry point can use it to implement ExecuteBatch.
func ExecuteSequential(ctx context.Context, reqs []Request, exec func(context.Context, Request) Response) []Response {
	responses := make([]Response, 0, len(reqs))
	for _, req := range reqs {
		responses = append(responses, exec(ctx, req))
	}
	return responses
}
