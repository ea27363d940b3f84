package main

import (
	"github.com/spf13/cobra"

	"github.com/jkrebs-tr/graphqlLambda/lambda"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Lambda runtime loop",
		Long: `Start the Lambda runtime loop for the configured event source. This is the
command the function's bootstrap runs.`,
		Example: `  # HTTP API behind API Gateway
  GQL_LAMBDA_EVENT_SOURCE=apigw-v2 gqllambda serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			executor, closeExecutor, err := newExecutor(cfg, logger)
			if err != nil {
				return err
			}
			defer closeExecutor()

			logger.WithField("eventSource", cfg.EventSource.String()).Info("Starting Lambda handler")
			return lambda.NewHandler(executor, logger).Start(cfg.EventSource)
		},
	}
}
