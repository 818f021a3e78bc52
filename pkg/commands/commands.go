package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/storefront/pkg/commands/options"
)

var (
	oo = &options.OutputOptions{}
	lo = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: options.Wrap80("Browse and sync the commerce records mirrored into the host data store."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	options.AddLogArgs(cmd, lo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addGet(topLevel)
	addSync(topLevel)
	addCleanup(topLevel)
	addImport(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
