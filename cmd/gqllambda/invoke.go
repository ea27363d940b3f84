package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkrebs-tr/graphqlLambda/graphql"
	"github.com/jkrebs-tr/graphqlLambda/lambda"
)

func newInvokeCmd() *cobra.Command {
	var eventPath string
	var source string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Handle one recorded event locally",
		Long: `Handle one trigger event read from a file, or stdin when no file is given, and print
the platform response as JSON.`,
		Example: `  # Replay a REST API event
  gqllambda invoke --event testdata/get.json --source apigw-v1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd, eventPath, source)
		},
	}

	cmd.Flags().StringVar(&eventPath, "event", "", "Path to the event JSON (default stdin)")
	cmd.Flags().StringVar(&source, "source", "", "Event source of the payload (default the configured one)")

	return cmd
}

func runInvoke(cmd *cobra.Command, eventPath, source string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	platform := cfg.EventSource
	if source != "" {
		var ok bool
		if platform, ok = graphql.ParsePlatformContext(source); !ok {
			return fmt.Errorf("unknown event source %q", source)
		}
	}

	var payload []byte
	if eventPath == "" {
		payload, err = io.ReadAll(cmd.InOrStdin())
	} else {
		payload, err = os.ReadFile(eventPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	executor, closeExecutor, err := newExecutor(cfg, logger)
	if err != nil {
		return err
	}
	defer closeExecutor()

	out, err := lambda.NewHandler(executor, logger).Invoke(cmd.Context(), platform, payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
