package auth

import "context"

// SetUserIDForTest authenticates ctx as userID without a token.
func SetUserIDForTest(ctx context.Context, userID string) context.Context {
	return WithUserID(ctx, userID)
}
