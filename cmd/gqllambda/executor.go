package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jkrebs-tr/graphqlLambda/config"
	"github.com/jkrebs-tr/graphqlLambda/engine"
	"github.com/jkrebs-tr/graphqlLambda/graphql"
	"github.com/jkrebs-tr/graphqlLambda/remote"
	"github.com/jkrebs-tr/graphqlLambda/starwars"
)

// newExecutor builds the engine described by cfg. The returned func releases it.
func newExecutor(cfg *config.Config, logger *logrus.Logger) (graphql.Executor, func(), error) {
	cacheControl := graphql.CacheControl{MaxAge: cfg.CacheMaxAge}

	if cfg.UpstreamURL == "" {
		schema, err := starwars.NewSchema(logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse schema: %w", err)
		}
		executor := engine.New(schema,
			engine.WithBatchConcurrency(cfg.BatchConcurrency),
			engine.WithCacheControl(cacheControl),
		)
		return executor, func() {}, nil
	}

	opts := []remote.Option{
		remote.WithTimeout(cfg.UpstreamTimeout),
		remote.WithRateLimit(cfg.UpstreamRPS),
		remote.WithCacheControl(cacheControl),
		remote.WithLogger(logger),
	}
	if len(cfg.UpstreamHeaders) > 0 {
		opts = append(opts, remote.WithHeaders(cfg.UpstreamHeaders))
	}
	if cfg.SignRequests {
		creds, err := remote.SessionCredentials(cfg.Region)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, remote.WithSigner(remote.NewSigV4Signer(creds, cfg.Region, remote.AppSyncService)))
	}

	executor := remote.New(cfg.UpstreamURL, opts...)
	logger.WithField("url", cfg.UpstreamURL).Info("Forwarding GraphQL requests upstream")
	return executor, executor.Close, nil
}
