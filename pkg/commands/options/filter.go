package options

import (
	"github.com/spf13/cobra"
)

// FilterOptions narrow a listed collection the way the UI panels do.
type FilterOptions struct {
	Search  string
	Status  string
	OrderID string
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "q", "",
		"Case-insensitive search term.")
	cmd.Flags().StringVar(&o.Status, "status", "",
		"Exact status to match, e.g. Draft, Shipped, active, inactive.")
	cmd.Flags().StringVar(&o.OrderID, "order", "",
		"Order id whose line items to list (order-items only).")
}
