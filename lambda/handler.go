// Package lambda serves a GraphQL executor behind AWS Lambda HTTP triggers: API Gateway
// REST and HTTP APIs, Application Load Balancers and function URLs.
package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
)

// Handler translates trigger events, runs them on the executor and translates the result
// back. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	executor graphql.Executor
	logger   *logrus.Logger
}

func NewHandler(executor graphql.Executor, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		executor: executor,
		logger:   logger,
	}
}

// Serve handles one platform independent event.
func (h *Handler) Serve(ctx context.Context, event graphql.RawEvent) graphql.HTTPResponse {
	log := h.logger.WithFields(logrus.Fields{
		"method":   event.Method,
		"path":     event.Path,
		"platform": event.Context.String(),
	})
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.WithField("requestId", lc.AwsRequestID)
	}

	batch, err := graphql.Translate(event)
	if err != nil {
		return h.errorResponse(log, err)
	}

	log.WithFields(logrus.Fields{
		"batch":    batch.Batch,
		"requests": len(batch.Requests),
	}).Debug("Executing GraphQL request")

	result := graphql.Execute(ctx, h.executor, batch)
	resp := graphql.ToResponse(result)
	if resp.StatusCode >= 500 {
		log.WithField("body", string(resp.Body)).Error("Failed to serialize GraphQL response")
	} else if !result.IsOK() {
		log.Debug("GraphQL request completed with errors")
	}
	return resp
}

func (h *Handler) errorResponse(log *logrus.Entry, err error) graphql.HTTPResponse {
	var te *graphql.TranslationError
	if errors.As(err, &te) {
		log.WithError(err).WithField("errorType", te.ErrorType()).Debug("Rejected GraphQL request")
	} else {
		log.WithError(err).Error("Failed to handle GraphQL request")
	}
	return graphql.ErrorResponse(err)
}

// APIGatewayProxy handles REST API events.
func (h *Handler) APIGatewayProxy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	event, err := FromAPIGatewayProxy(req)
	if err != nil {
		return APIGatewayProxyResponse(h.errorResponse(h.logger.WithField("platform", "apigw-v1"), err)), nil
	}
	return APIGatewayProxyResponse(h.Serve(ctx, event)), nil
}

// APIGatewayV2 handles HTTP API events.
func (h *Handler) APIGatewayV2(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	event, err := FromAPIGatewayV2(req)
	if err != nil {
		return APIGatewayV2Response(h.errorResponse(h.logger.WithField("platform", "apigw-v2"), err)), nil
	}
	return APIGatewayV2Response(h.Serve(ctx, event)), nil
}

// ALB handles Application Load Balancer events.
func (h *Handler) ALB(ctx context.Context, req events.ALBTargetGroupRequest) (events.ALBTargetGroupResponse, error) {
	event, err := FromALB(req)
	if err != nil {
		return ALBResponse(h.errorResponse(h.logger.WithField("platform", "alb"), err)), nil
	}
	return ALBResponse(h.Serve(ctx, event)), nil
}

// FunctionURL handles function URL events.
func (h *Handler) FunctionURL(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	event, err := FromFunctionURL(req)
	if err != nil {
		return FunctionURLResponse(h.errorResponse(h.logger.WithField("platform", "function-url"), err)), nil
	}
	return FunctionURLResponse(h.Serve(ctx, event)), nil
}

// Invoke decodes a raw event payload for source, handles it and encodes the platform
// response. It is the same path the Lambda runtime takes and is used to replay recorded
// events locally.
func (h *Handler) Invoke(ctx context.Context, source graphql.PlatformContext, payload []byte) ([]byte, error) {
	switch source {
	case graphql.ContextAPIGatewayV1:
		return invoke(ctx, payload, h.APIGatewayProxy)
	case graphql.ContextAPIGatewayV2:
		return invoke(ctx, payload, h.APIGatewayV2)
	case graphql.ContextALB:
		return invoke(ctx, payload, h.ALB)
	case graphql.ContextFunctionURL:
		return invoke(ctx, payload, h.FunctionURL)
	default:
		return nil, fmt.Errorf("unsupported event source %q", source)
	}
}

func invoke[TIn, TOut any](ctx context.Context, payload []byte, handle func(context.Context, TIn) (TOut, error)) ([]byte, error) {
	var in TIn
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	out, err := handle(ctx, in)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// Start hands the handler for source to the Lambda runtime. It does not return.
//
// Example usage:
//
//	handler := lambda.NewHandler(executor, logger)
//	handler.Start(graphql.ContextAPIGatewayV2)
func (h *Handler) Start(source graphql.PlatformContext) error {
	switch source {
	case graphql.ContextAPIGatewayV1:
		awslambda.Start(h.APIGatewayProxy)
	case graphql.ContextAPIGatewayV2:
		awslambda.Start(h.APIGatewayV2)
	case graphql.ContextALB:
		awslambda.Start(h.ALB)
	case graphql.ContextFunctionURL:
		awslambda.Start(h.FunctionURL)
	default:
		return fmt.Errorf("unsupported event source %q", source)
	}
	return nil
}
