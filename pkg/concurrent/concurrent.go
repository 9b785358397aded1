package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Each runs action for every item in a separate goroutine, at most limit at a time.
// A limit <= 0 runs all items at once. The first error cancels the context handed to
// the remaining actions and is returned after every goroutine finished.
func Each[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	errGroup, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		errGroup.SetLimit(limit)
	}

	for _, item := range items {
		errGroup.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(ctx, item)
		})
	}

	return errGroup.Wait()
}
