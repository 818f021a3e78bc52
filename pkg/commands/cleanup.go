package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/storefront/pkg/commands/options"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/runner/cleanup"
)

func addCleanup(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "delete every mirrored record, host side and local",
		Example: `
storefront cleanup --yes
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(lo)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			c := cleanup.Cleanup{
				Confirmed: co.Yes,
				Client:    e.mirror,
				Notifier:  notify.Multi{notify.Console{Out: cmd.ErrOrStderr()}, notify.Logger{Log: e.log}},
				Logger:    e.log,
				Out:       cmd.OutOrStdout(),
			}
			return c.Do(cmd.Context())
		},
	}

	options.AddConfirmArgs(cmd, co)

	topLevel.AddCommand(cmd)
}
