package contexthelper

import "context"

// CheckCancellation returns the context's error if it has already been
// cancelled, nil otherwise.
func CheckCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
