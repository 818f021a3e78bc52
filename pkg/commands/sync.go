package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/storefront/pkg/commands/options"
	"tableflip.dev/storefront/pkg/notify"
	"tableflip.dev/storefront/pkg/record"
	syncrunner "tableflip.dev/storefront/pkg/runner/sync"
)

func addSync(topLevel *cobra.Command) {
	var target record.SyncTarget

	cmd := &cobra.Command{
		Use:   "sync <customers|orders|products|all>",
		Short: "run a backend sync job and refresh the mirror",
		Long: options.Wrap80(
			"Run a backend sync job that pulls records from the commerce platform, then refresh the local mirror for the kinds the job touched. " +
				"'all' is the full historical sync and takes materially longer."),
		Example: `
storefront sync products
storefront sync all --json
`,
		ValidArgs: []string{"customers", "orders", "products", "all"},
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a sync target")
			}
			var err error
			target, err = record.ParseSyncTarget(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(lo)
			if err != nil {
				return oo.HandleError(err)
			}
			defer func() { _ = e.log.Sync() }()
			s := syncrunner.Sync{
				Target:   target,
				JSON:     oo.JSON,
				Client:   e.mirror,
				Notifier: notify.Multi{notify.Console{Out: cmd.ErrOrStderr()}, notify.Logger{Log: e.log}},
				Logger:   e.log,
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
