package graphql

import (
	"strconv"
	"strings"
)

// CacheControl is the caching hint an engine attaches to a result.
//
// The zero value means "no hint". MaxAge -1 forbids caching.
type CacheControl struct {
	Private bool
	MaxAge  int
}

// NoCache forbids intermediaries from caching the response.
var NoCache = CacheControl{MaxAge: -1}

// Value renders the hint as a Cache-Control header value. ok is false when there is
// nothing to send.
func (c CacheControl) Value() (value string, ok bool) {
	var directives []string
	switch {
	case c.MaxAge > 0:
		directives = append(directives, "max-age="+strconv.Itoa(c.MaxAge))
	case c.MaxAge == -1:
		directives = append(directives, "no-cache")
	}
	if c.Private {
		directives = append(directives, "private")
	}
	if len(directives) == 0 {
		return "", false
	}
	return strings.Join(directives, ", "), true
}

// Merge returns the most conservative combination of two hints: private wins, no-cache wins,
// an absent max-age defers to the other side, otherwise the smaller max-age wins.
func (c CacheControl) Merge(other CacheControl) CacheControl {
	merged := CacheControl{Private: c.Private || other.Private}
	switch {
	case c.MaxAge == -1 || other.MaxAge == -1:
		merged.MaxAge = -1
	case other.MaxAge == 0:
		merged.MaxAge = c.MaxAge
	case c.MaxAge == 0:
		merged.MaxAge = other.MaxAge
	default:
		merged.MaxAge = min(c.MaxAge, other.MaxAge)
	}
	return merged
}
