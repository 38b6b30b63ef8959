// internal/cmdutil/run.go
package cmdutil

import "context"

// Send pushes items into a writer channel, stopping early when ctx is done.
// Nothing is sent once ctx is done. It returns how many items were sent.
func Send[T any](ctx context.Context, in chan<- T, items []T) (int, error) {
	for i, x := range items {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		select {
		case in <- x:
		case <-ctx.Done():
			return i, ctx.Err()
		}
	}
	return len(items), nil
}
