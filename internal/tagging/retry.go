package tagging

import "context"

// RetryConflict runs op, and runs it once more if it failed with an error
// isConflict accepts. Two writers creating the same tag race on the unique
// title; the loser's second attempt finds the winner's tag instead of
// creating one.
//
// The retry is skipped when ctx is already done. The last error is returned
// unchanged.
func RetryConflict(ctx context.Context, isConflict func(error) bool, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil || !isConflict(err) || ctx.Err() != nil {
		return err
	}
	return op(ctx)
}
