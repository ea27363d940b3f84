package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, graphql.ContextAPIGatewayV2, cfg.EventSource)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, 0, cfg.CacheMaxAge)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Empty(t, cfg.UpstreamURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GQL_LAMBDA_EVENT_SOURCE", "alb")
	t.Setenv("GQL_LAMBDA_BATCH_CONCURRENCY", "8")
	t.Setenv("GQL_LAMBDA_CACHE_MAX_AGE", "60")
	t.Setenv("GQL_LAMBDA_UPSTREAM_URL", "https://example.appsync-api.eu-west-1.amazonaws.com/graphql")
	t.Setenv("GQL_LAMBDA_UPSTREAM_TIMEOUT", "5s")
	t.Setenv("GQL_LAMBDA_SIGN_REQUESTS", "true")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, graphql.ContextALB, cfg.EventSource)
	assert.Equal(t, 8, cfg.BatchConcurrency)
	assert.Equal(t, 60, cfg.CacheMaxAge)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.True(t, cfg.SignRequests)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("GQL_LAMBDA_EVENT_SOURCE", "alb")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("event-source", "", "")
	require.NoError(t, flags.Parse([]string{"--event-source=apigw-v1"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, graphql.ContextAPIGatewayV1, cfg.EventSource)
}

func TestLoadUpstreamHeaders(t *testing.T) {
	t.Setenv("GQL_LAMBDA_UPSTREAM_URL", "https://example.appsync-api.eu-west-1.amazonaws.com/graphql")
	t.Setenv("GQL_LAMBDA_UPSTREAM_HEADERS", `{"x-api-key":"da2-secret"}`)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x-api-key": "da2-secret"}, cfg.UpstreamHeaders)

	t.Setenv("GQL_LAMBDA_UPSTREAM_HEADERS", `{"bad header":"x"}`)
	_, err = Load(nil)
	assert.ErrorContains(t, err, "invalid upstream header")
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"GQL_LAMBDA_EVENT_SOURCE":      "sqs",
		"GQL_LAMBDA_BATCH_CONCURRENCY": "0",
		"GQL_LAMBDA_UPSTREAM_URL":      "not a url",
		"GQL_LAMBDA_CACHE_MAX_AGE":     "-5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(nil)
			assert.Error(t, err)
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLogLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, GetLogLevel(" WARN "))
	assert.Equal(t, logrus.ErrorLevel, GetLogLevel("error"))
	assert.Equal(t, logrus.InfoLevel, GetLogLevel(""))
}
