package graphql

import (
	"net/http"
	"net/url"
)

// BodyEncoding tells how the platform delivered the request body.
type BodyEncoding int

const (
	BodyEmpty BodyEncoding = iota
	BodyText
	BodyBinary
)

// PlatformContext identifies the integration that triggered the function and therefore
// the payload format of the event.
type PlatformContext int

const (
	ContextUnknown PlatformContext = iota
	ContextAPIGatewayV1
	ContextAPIGatewayV2
	ContextALB
	ContextFunctionURL
)

var platformNames = map[PlatformContext]string{
	ContextUnknown:      "unknown",
	ContextAPIGatewayV1: "apigw-v1",
	ContextAPIGatewayV2: "apigw-v2",
	ContextALB:          "alb",
	ContextFunctionURL:  "function-url",
}

func (c PlatformContext) String() string {
	if name, ok := platformNames[c]; ok {
		return name
	}
	return platformNames[ContextUnknown]
}

// JoinsMultiValueParams reports whether the integration uses the 2.0 payload format, which
// merges repeated query parameters with commas. A comma inside a single value cannot be told
// apart from a separator, so values split on commas must be joined back before use.
func (c PlatformContext) JoinsMultiValueParams() bool {
	return c == ContextAPIGatewayV2 || c == ContextFunctionURL
}

// ParsePlatformContext resolves a name produced by PlatformContext.String.
func ParsePlatformContext(name string) (PlatformContext, bool) {
	for ctx, n := range platformNames {
		if n == name && ctx != ContextUnknown {
			return ctx, true
		}
	}
	return ContextUnknown, false
}

// RawEvent is an HTTP-shaped trigger event, independent of the platform it came from.
type RawEvent struct {
	Method       string
	Path         string
	Query        url.Values
	Header       http.Header
	Body         []byte
	BodyEncoding BodyEncoding
	Context      PlatformContext
}

// HasBody reports whether the event carries a non-empty body.
func (e RawEvent) HasBody() bool {
	return e.BodyEncoding != BodyEmpty && len(e.Body) > 0
}

// HTTPResponse is the HTTP-shaped result handed back to the hosting runtime.
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
