package backend

import (
	"context"

	"tableflip.dev/storefront/pkg/binding"
)

// Fetcher adapts c to a binding read that decodes each payload into R.
func Fetcher[R any](c Client) binding.Fetcher[R] {
	return func(ctx context.Context, q binding.Query) ([]R, error) {
		raws, err := c.GetCollection(ctx, q.Kind, q.ScopeID)
		if err != nil {
			return nil, err
		}
		return Decode[R](q.Kind, raws)
	}
}
