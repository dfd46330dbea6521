package pos

import "context"

// replaceChildren drops every existing child row of an aggregate and inserts
// children in their place. An empty children slice leaves the aggregate with
// no lines. Callers run it inside the aggregate's transaction.
func replaceChildren[T any](
	ctx context.Context,
	deleteAll func(ctx context.Context) (int64, error),
	insert func(ctx context.Context, child *T) error,
	children []T,
) error {
	if _, err := deleteAll(ctx); err != nil {
		return err
	}
	for i := range children {
		if err := insert(ctx, &children[i]); err != nil {
			return err
		}
	}
	return nil
}
