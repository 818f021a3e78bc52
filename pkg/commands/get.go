package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/storefront/pkg/commands/options"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/runner/get"
)

func kindNames() []string {
	kinds := record.AllKinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}

func addGet(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}
	var kind record.Kind

	cmd := &cobra.Command{
		Use:   "get <kind>",
		Short: "list mirrored records",
		Long: options.Wrap80(fmt.Sprintf(
			"List mirrored records of one kind, filtered the same way the UI panels filter. Kinds: %s.",
			strings.Join(kindNames(), ", "))),
		Example: `
storefront get customers --search ruiz
storefront get orders --status Shipped --json
storefront get order-items --order 801xx000003GZ0AAM
`,
		ValidArgs: kindNames(),
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a kind")
			}
			var err error
			kind, err = record.ParseKind(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(lo)
			if err != nil {
				return oo.HandleError(err)
			}
			defer func() { _ = e.log.Sync() }()
			g := get.Get{
				Kind:      kind,
				Search:    fo.Search,
				Status:    fo.Status,
				OrderID:   fo.OrderID,
				ShowID:    io.ShowID,
				JSON:      oo.JSON,
				Client:    e.mirror,
				Formatter: e.formatter,
				Logger:    e.log,
				Out:       cmd.OutOrStdout(),
			}
			return oo.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
