package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "pathsummarizer"

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Summarize PATH transit alerts with a cached LLM call",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newLambdaCmd(),
		newSummarizeCmd(),
		newPrewarmCmd(),
		newVersionTagCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
