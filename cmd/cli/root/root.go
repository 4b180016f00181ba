package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the top-level journal command.
var RootCmd = &cobra.Command{
	Use:           "journal",
	Short:         "Journal Prompt API client",
	Long:          "Command line interface for fetching and adding prompts on the Journal Prompt API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns RootCmd so subpackages can attach their commands.
func GetRoot() *cobra.Command {
	return RootCmd
}
