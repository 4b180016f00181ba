package main

import (
	"fmt"
	"os"

	"github.com/crucial707/journal-prompt-api/cmd/cli/prompts"
	"github.com/crucial707/journal-prompt-api/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	prompts.InitPrompts(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
