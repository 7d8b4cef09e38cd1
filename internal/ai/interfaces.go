package ai

import (
	"context"

	"formfill/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	AnswerQuestion(ctx context.Context, input types.AnswerQuestionInput) (types.FieldAnswer, *TokenUsage, error)
	ExtractProfile(ctx context.Context, input types.ParseResumeInput) (types.Profile, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}
