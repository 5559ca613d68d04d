package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"codetutor/internal/ui"
)

func main() {
	// API keys usually live in a local .env; absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "codetutor",
		Short:         "Generate beginner tutorials from codebases with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newSearchCmd())
	return root
}
