package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/runner/importer"
)

func addImport(topLevel *cobra.Command) {
	var kind record.Kind

	cmd := &cobra.Command{
		Use:   "import <kind> <file.json>",
		Short: "replace a mirrored collection from a JSON export",
		Example: `
storefront import products products.json
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a kind and a file")
			}
			var err error
			kind, err = record.ParseKind(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(lo)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()
			i := importer.Import{
				Kind:        kind,
				Path:        args[1],
				Persistence: e.persistence,
				Out:         cmd.OutOrStdout(),
			}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
