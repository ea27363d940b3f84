package lambda

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
)

// FromAPIGatewayProxy converts a REST API (payload format 1.0) event.
func FromAPIGatewayProxy(req events.APIGatewayProxyRequest) (graphql.RawEvent, error) {
	body, encoding, err := decodeBody(req.Body, req.IsBase64Encoded)
	if err != nil {
		return graphql.RawEvent{}, err
	}
	return graphql.RawEvent{
		Method:       req.HTTPMethod,
		Path:         req.Path,
		Query:        multiValues(req.MultiValueQueryStringParameters, req.QueryStringParameters, nil),
		Header:       headers(req.MultiValueHeaders, req.Headers),
		Body:         body,
		BodyEncoding: encoding,
		Context:      graphql.ContextAPIGatewayV1,
	}, nil
}

// FromAPIGatewayV2 converts an HTTP API (payload format 2.0) event. The platform merges
// repeated query parameters with commas; they are split back into separate values.
func FromAPIGatewayV2(req events.APIGatewayV2HTTPRequest) (graphql.RawEvent, error) {
	body, encoding, err := decodeBody(req.Body, req.IsBase64Encoded)
	if err != nil {
		return graphql.RawEvent{}, err
	}
	return graphql.RawEvent{
		Method:       req.RequestContext.HTTP.Method,
		Path:         req.RawPath,
		Query:        splitCommaValues(req.QueryStringParameters),
		Header:       headers(nil, req.Headers),
		Body:         body,
		BodyEncoding: encoding,
		Context:      graphql.ContextAPIGatewayV2,
	}, nil
}

// FromALB converts an Application Load Balancer event. ALB passes query parameters
// through without decoding them, so keys and values are unescaped here.
func FromALB(req events.ALBTargetGroupRequest) (graphql.RawEvent, error) {
	body, encoding, err := decodeBody(req.Body, req.IsBase64Encoded)
	if err != nil {
		return graphql.RawEvent{}, err
	}
	return graphql.RawEvent{
		Method:       req.HTTPMethod,
		Path:         req.Path,
		Query:        multiValues(req.MultiValueQueryStringParameters, req.QueryStringParameters, unescape),
		Header:       headers(req.MultiValueHeaders, req.Headers),
		Body:         body,
		BodyEncoding: encoding,
		Context:      graphql.ContextALB,
	}, nil
}

// FromFunctionURL converts a function URL event. Function URLs use payload format 2.0.
func FromFunctionURL(req events.LambdaFunctionURLRequest) (graphql.RawEvent, error) {
	body, encoding, err := decodeBody(req.Body, req.IsBase64Encoded)
	if err != nil {
		return graphql.RawEvent{}, err
	}
	return graphql.RawEvent{
		Method:       req.RequestContext.HTTP.Method,
		Path:         req.RawPath,
		Query:        splitCommaValues(req.QueryStringParameters),
		Header:       headers(nil, req.Headers),
		Body:         body,
		BodyEncoding: encoding,
		Context:      graphql.ContextFunctionURL,
	}, nil
}

func decodeBody(body string, isBase64 bool) ([]byte, graphql.BodyEncoding, error) {
	if body == "" {
		return nil, graphql.BodyEmpty, nil
	}
	if !isBase64 {
		return []byte(body), graphql.BodyText, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, graphql.BodyEmpty, &graphql.TranslationError{
			Kind:   graphql.KindMalformedJSON,
			Detail: fmt.Sprintf("invalid base64 body: %v", err),
			Err:    err,
		}
	}
	return decoded, graphql.BodyBinary, nil
}

func multiValues(multi map[string][]string, single map[string]string, decode func(string) string) url.Values {
	values := make(url.Values, max(len(multi), len(single)))
	if len(multi) > 0 {
		for key, vs := range multi {
			for _, v := range vs {
				values.Add(decodeWith(decode, key), decodeWith(decode, v))
			}
		}
		return values
	}
	for key, v := range single {
		values.Add(decodeWith(decode, key), decodeWith(decode, v))
	}
	return values
}

func decodeWith(decode func(string) string, s string) string {
	if decode == nil {
		return s
	}
	return decode(s)
}

func unescape(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		return unescaped
	}
	return s
}

// splitCommaValues undoes the comma merge for "query", the only parameter the translator
// joins back. Other parameters, variables included, pass through whole.
func splitCommaValues(params map[string]string) url.Values {
	values := make(url.Values, len(params))
	for key, v := range params {
		if key == "query" {
			values[key] = strings.Split(v, ",")
			continue
		}
		values[key] = []string{v}
	}
	return values
}

func headers(multi map[string][]string, single map[string]string) http.Header {
	header := make(http.Header, max(len(multi), len(single)))
	for key, vs := range multi {
		for _, v := range vs {
			header.Add(key, v)
		}
	}
	for key, v := range single {
		if _, ok := header[http.CanonicalHeaderKey(key)]; !ok {
			header.Set(key, v)
		}
	}
	return header
}

// APIGatewayProxyResponse converts resp for a REST API integration.
func APIGatewayProxyResponse(resp graphql.HTTPResponse) events.APIGatewayProxyResponse {
	single, multi := splitHeaders(resp.Header)
	return events.APIGatewayProxyResponse{
		StatusCode:        resp.StatusCode,
		Headers:           single,
		MultiValueHeaders: multi,
		Body:              string(resp.Body),
	}
}

// APIGatewayV2Response converts resp for an HTTP API integration. Repeated headers are
// joined with commas, cookies travel separately.
func APIGatewayV2Response(resp graphql.HTTPResponse) events.APIGatewayV2HTTPResponse {
	header, cookies := joinHeaders(resp.Header)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    header,
		Body:       string(resp.Body),
		Cookies:    cookies,
	}
}

// ALBResponse converts resp for a load balancer target group. Both header maps are filled so
// the response works with and without multi-value headers enabled.
func ALBResponse(resp graphql.HTTPResponse) events.ALBTargetGroupResponse {
	header := make(map[string]string, len(resp.Header))
	multi := make(map[string][]string, len(resp.Header))
	for key, vs := range resp.Header {
		if len(vs) == 0 {
			continue
		}
		header[key] = strings.Join(vs, ", ")
		multi[key] = vs
	}
	return events.ALBTargetGroupResponse{
		StatusCode:        resp.StatusCode,
		StatusDescription: fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Headers:           header,
		MultiValueHeaders: multi,
		Body:              string(resp.Body),
	}
}

// FunctionURLResponse converts resp for a function URL.
func FunctionURLResponse(resp graphql.HTTPResponse) events.LambdaFunctionURLResponse {
	header, cookies := joinHeaders(resp.Header)
	return events.LambdaFunctionURLResponse{
		StatusCode: resp.StatusCode,
		Headers:    header,
		Body:       string(resp.Body),
		Cookies:    cookies,
	}
}

// splitHeaders puts single valued headers in the first map and repeated ones in the second.
func splitHeaders(header http.Header) (map[string]string, map[string][]string) {
	single := make(map[string]string, len(header))
	var multi map[string][]string
	for key, vs := range header {
		switch len(vs) {
		case 0:
		case 1:
			single[key] = vs[0]
		default:
			if multi == nil {
				multi = make(map[string][]string)
			}
			multi[key] = vs
		}
	}
	return single, multi
}

func joinHeaders(header http.Header) (map[string]string, []string) {
	joined := make(map[string]string, len(header))
	var cookies []string
	for key, vs := range header {
		if len(vs) == 0 {
			continue
		}
		if key == "Set-Cookie" {
			cookies = append(cookies, vs...)
			continue
		}
		joined[key] = strings.Join(vs, ", ")
	}
	return joined, cookies
}
