package ports

import "context"

// CommentaryClient is the boundary to the LLM provider: one prompt in, one
// text commentary out. The provider's internal thread/poll protocol stays on
// its side of this interface.
type CommentaryClient interface {
	Commentary(ctx context.Context, prompt string) (string, error)

	// Model identifies the model/version the commentary comes from; it is
	// part of the compute-cache key.
	Model() string
}
