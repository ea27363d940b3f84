package engine

import (
	"context"

	"github.com/sirupsen/logrus"
)

// PanicLogger reports resolver panics recovered by the schema. Pass it with
// graphql.Logger when parsing the schema.
type PanicLogger struct {
	Logger *logrus.Logger
}

func (l PanicLogger) LogPanic(_ context.Context, value interface{}) {
	l.Logger.WithField("panic", value).Error("GraphQL resolver panicked")
}
