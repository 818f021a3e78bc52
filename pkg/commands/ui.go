package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/storefront/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
storefront ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(lo)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			i := ui.UI{
				Client:      e.mirror,
				Persistence: e.persistence,
				Formatter:   e.formatter,
				Logger:      e.log,
				Source:      e.source(),
			}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
