package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/net/http/httpguts"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GQL_LAMBDA"

// Config holds the runtime settings of the function.
type Config struct {
	LogLevel string
	// EventSource selects the trigger payload format the function is deployed behind.
	EventSource graphql.PlatformContext
	// BatchConcurrency bounds how many requests of one batch execute at once.
	BatchConcurrency int
	// CacheMaxAge is the max-age in seconds attached to successful results. 0 sends no hint.
	CacheMaxAge int

	UpstreamURL     string
	UpstreamRPS     int
	UpstreamTimeout time.Duration
	// UpstreamHeaders are sent with every upstream call, e.g. {"x-api-key": "..."} for AppSync.
	UpstreamHeaders map[string]string
	Region          string
	SignRequests    bool
}

// Load reads the configuration from GQL_LAMBDA_* environment variables. UPSTREAM_HEADERS is
// a JSON object of header names to values. When flags is not
// nil, flags that were set on the command line take precedence.
//
// Example usage:
//
//	cfg, err := config.Load(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("event_source", graphql.ContextAPIGatewayV2.String())
	v.SetDefault("batch_concurrency", 4)
	v.SetDefault("cache_max_age", 0)
	v.SetDefault("upstream_rps", 0)
	v.SetDefault("upstream_timeout", 30*time.Second)
	v.SetDefault("region", "us-east-1")
	v.SetDefault("sign_requests", false)

	if err := v.BindEnv("region", EnvPrefix+"_REGION", "AWS_REGION"); err != nil {
		return nil, fmt.Errorf("failed to bind region: %w", err)
	}
	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	source, ok := graphql.ParsePlatformContext(v.GetString("event_source"))
	if !ok {
		return nil, fmt.Errorf("unknown event source %q", v.GetString("event_source"))
	}

	cfg := &Config{
		LogLevel:         v.GetString("log_level"),
		EventSource:      source,
		BatchConcurrency: v.GetInt("batch_concurrency"),
		CacheMaxAge:      v.GetInt("cache_max_age"),
		UpstreamURL:      v.GetString("upstream_url"),
		UpstreamRPS:      v.GetInt("upstream_rps"),
		UpstreamTimeout:  v.GetDuration("upstream_timeout"),
		UpstreamHeaders:  v.GetStringMapString("upstream_headers"),
		Region:           v.GetString("region"),
		SignRequests:     v.GetBool("sign_requests"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the function cannot run with.
func (c *Config) Validate() error {
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", c.BatchConcurrency)
	}
	if c.CacheMaxAge < -1 {
		return fmt.Errorf("cache max age must be -1, 0 or positive, got %d", c.CacheMaxAge)
	}
	if c.UpstreamRPS < 0 {
		return fmt.Errorf("upstream rps must not be negative, got %d", c.UpstreamRPS)
	}
	if c.UpstreamURL != "" {
		u, err := url.Parse(c.UpstreamURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid upstream url %q", c.UpstreamURL)
		}
		if c.UpstreamTimeout <= 0 {
			return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
		}
	}
	for key, value := range c.UpstreamHeaders {
		if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("invalid upstream header %q", key)
		}
	}
	if c.SignRequests && c.Region == "" {
		return fmt.Errorf("region is required to sign upstream requests")
	}
	return nil
}
