package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"pathsummarizer/internal/httpapi"
)

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the summarize API as an API Gateway Lambda function",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context())
		},
	}
}

// runLambda does not drain shadow calls between invocations; they run
// under their own timeout and are dropped if the runtime is frozen.
func runLambda(ctx context.Context) error {
	cfg, log, shutdownTracing, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize service",
			"error", err)

		return err
	}

	handler := httpapi.NewHandler(a.service, cfg.SkipCacheMagicWord, log)

	lambda.StartWithOptions(handler.HandleAPIGateway,
		lambda.WithEnableSIGTERM(func() {
			_ = shutdownTracing(context.Background())
			_ = a.close()
		}),
	)

	return nil
}
