package graphql

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorKind classifies why an event could not be translated into a GraphQL request.
type ErrorKind int

const (
	KindEmptyBody ErrorKind = iota + 1
	KindUnparseableQuery
	KindUnsupportedMethod
	KindMalformedJSON
	KindMalformedEnvelope
)

// errorTypes holds the machine-readable tag written as "errorType" for every kind.
var errorTypes = map[ErrorKind]string{
	KindEmptyBody:         "EmptyBody",
	KindUnparseableQuery:  "QueryError",
	KindUnsupportedMethod: "MethodNotAllowed",
	KindMalformedJSON:     "MalformedJSON",
	KindMalformedEnvelope: "MalformedGraphQLEnvelope",
}

var errorMessages = map[ErrorKind]string{
	KindEmptyBody:         "empty body",
	KindUnparseableQuery:  "error while reading query",
	KindUnsupportedMethod: "only GET and POST requests are allowed",
	KindMalformedJSON:     "malformed JSON body",
	KindMalformedEnvelope: "malformed GraphQL request",
}

// String returns the errorType tag of the kind.
func (k ErrorKind) String() string {
	if tag, ok := errorTypes[k]; ok {
		return tag
	}
	return "Unknown"
}

// Sentinels for errors.Is. Two translation errors match when their kinds match.
var (
	ErrEmptyBody         = &TranslationError{Kind: KindEmptyBody}
	ErrUnparseableQuery  = &TranslationError{Kind: KindUnparseableQuery}
	ErrUnsupportedMethod = &TranslationError{Kind: KindUnsupportedMethod}
	ErrMalformedJSON     = &TranslationError{Kind: KindMalformedJSON}
	ErrMalformedEnvelope = &TranslationError{Kind: KindMalformedEnvelope}
)

// Tags for failures that happen after translation succeeded.
const (
	internalErrorType      = "InternalServerError"
	serializationErrorType = "SerializationError"
)

// TranslationError is returned by Translate when an event cannot become a GraphQL request.
// It is always caused by client input.
type TranslationError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func newTranslationError(kind ErrorKind, detail string, err error) *TranslationError {
	return &TranslationError{Kind: kind, Detail: detail, Err: err}
}

// Error implements the error interface
func (e *TranslationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return errorMessages[e.Kind]
}

// Unwrap returns the underlying parser error, if any
func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a TranslationError of the same kind.
func (e *TranslationError) Is(target error) bool {
	var te *TranslationError
	if !errors.As(target, &te) {
		return false
	}
	return te.Kind == e.Kind
}

// ErrorType returns the stable tag clients can switch on.
func (e *TranslationError) ErrorType() string {
	return e.Kind.String()
}

// StatusCode maps the error to its HTTP status. Only UnsupportedMethod is 405.
func (e *TranslationError) StatusCode() int {
	if e.Kind == KindUnsupportedMethod {
		return http.StatusMethodNotAllowed
	}
	return http.StatusBadRequest
}

type errorBody struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

// ErrorResponse builds the HTTP response for a failed translation.
//
// Parameters:
//   - err: the error returned by Translate. Anything that is not a *TranslationError is
//     treated as an internal failure and answered with 500.
//
// Returns a response with a {"errorType","errorMessage"} JSON body and
// Content-Type application/json.
//
// Example usage:
//
//	req, err := graphql.Translate(event)
//	if err != nil {
//		return graphql.ErrorResponse(err)
//	}
func ErrorResponse(err error) HTTPResponse {
	if err == nil {
		err = errors.New("unknown error")
	}

	var te *TranslationError
	if !errors.As(err, &te) {
		return errorResponse(http.StatusInternalServerError, internalErrorType, err.Error())
	}

	response := errorResponse(te.StatusCode(), te.ErrorType(), te.Error())
	if te.Kind == KindUnsupportedMethod {
		response.Header.Set("Allow", http.MethodGet+", "+http.MethodPost)
	}
	return response
}

func errorResponse(status int, errorType, message string) HTTPResponse {
	// errorBody only holds strings, Marshal cannot fail
	body, _ := json.Marshal(errorBody{
		ErrorType:    errorType,
		ErrorMessage: message,
	})

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return HTTPResponse{
		StatusCode: status,
		Header:     header,
		Body:       body,
	}
}
