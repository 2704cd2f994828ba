package app

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/konturio/insights-llm-api/internal"
	"github.com/konturio/insights-llm-api/ports"
)

// CommentaryService produces LLM commentary for analytics prompts, with a
// single-flight compute cache in front of the model call.
type CommentaryService struct {
	llm          ports.CommentaryClient
	cache        ports.ComputeCache
	instructions string
	log          *internal.Logger
}

// NewCommentaryService creates a commentary service.
func NewCommentaryService(llm ports.CommentaryClient, cache ports.ComputeCache, instructions string, log *internal.Logger) *CommentaryService {
	return &CommentaryService{
		llm:          llm,
		cache:        cache,
		instructions: instructions,
		log:          log,
	}
}

// Fingerprint derives the cache key for a prompt. Instructions are part
// of the key so a prompt rewrite invalidates old responses.
func (s *CommentaryService) Fingerprint(prompt string) string {
	sum := md5.Sum([]byte("instructions: " + s.instructions + "; prompt: " + prompt))
	return hex.EncodeToString(sum[:])
}

// CachedCommentary returns commentary for the prompt, calling the model
// at most once per fingerprint and model.
func (s *CommentaryService) CachedCommentary(ctx context.Context, prompt string) (string, error) {
	hash := s.Fingerprint(prompt)
	model := s.llm.Model()
	return computeOnce(ctx, s.cache, "llm", hash, prompt, model, s.log,
		func(ctx context.Context) (string, error) {
			s.log.Info("requesting commentary from %s for %s", model, hash)
			return s.llm.Commentary(ctx, prompt)
		})
}
