package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jkrebs-tr/graphqlLambda/config"
	"github.com/jkrebs-tr/graphqlLambda/logging"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gqllambda",
		Short: "Serve GraphQL from AWS Lambda HTTP triggers",
		Long: `gqllambda runs a GraphQL engine behind API Gateway, Application Load Balancer
or function URL triggers.

Without an upstream URL the built-in example schema is served. With one, every request
is forwarded to that GraphQL endpoint, optionally signed with SigV4.

Settings are read from GQL_LAMBDA_* environment variables and local .env files. Flags
take precedence.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "log level: debug|info|warn|error")
	flags.String("event-source", "", "trigger payload format: apigw-v1|apigw-v2|alb|function-url")
	flags.Int("batch-concurrency", 0, "requests of one batch executed at once")
	flags.Int("cache-max-age", 0, "max-age in seconds for successful results, -1 for no-cache")
	flags.String("upstream-url", "", "forward requests to this GraphQL endpoint")
	flags.String("upstream-headers", "", `headers for upstream calls as JSON, e.g. {"x-api-key":"..."}`)
	flags.Int("upstream-rps", 0, "upstream requests per second, 0 for unlimited")
	flags.Bool("sign-requests", false, "sign upstream requests with SigV4")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newInvokeCmd())
	return rootCmd
}

// loadConfig reads the settings for cmd and builds the logger they describe. The logger
// exists before the .env files are read so their loading is reported, and takes the
// configured level once the settings are known. Logs go to stderr, keeping stdout for
// command output.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	logger := logging.NewLoggerWithService("gqllambda", bootstrapLogLevel(cmd))
	logger.SetOutput(cmd.ErrOrStderr())

	config.LoadEnv(logger)
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(config.GetLogLevel(cfg.LogLevel))
	logger.WithFields(logging.Fields{
		"eventSource": cfg.EventSource.String(),
		"upstream":    cfg.UpstreamURL,
	}).Debug("Loaded configuration")
	return cfg, logger, nil
}

// bootstrapLogLevel is the level in effect before configuration is loaded: the flag when set,
// otherwise the process environment.
func bootstrapLogLevel(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		return flag.Value.String()
	}
	return os.Getenv(config.EnvPrefix + "_LOG_LEVEL")
}
