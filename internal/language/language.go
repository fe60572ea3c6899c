// Package language is the client for the remote text-understanding
// service. The service is an external collaborator; the rest of the
// core depends only on the Analyzer interface.
package language

import (
	"context"

	"github.com/repofit/repofit-backend/internal/model"
)

// Analyzer exposes the three remote operations the tone pipeline uses.
// Implementations must honor ctx deadlines; retries live with callers.
type Analyzer interface {
	// AnalyzeSentiment returns document-level sentiment.
	AnalyzeSentiment(ctx context.Context, text string) (model.Sentiment, error)
	// AnalyzeEntities returns salient entities.
	AnalyzeEntities(ctx context.Context, text string) ([]model.Entity, error)
	// ClassifyText returns content categories. English-only upstream;
	// callers gate on detected language.
	ClassifyText(ctx context.Context, text string) ([]model.ContentCategory, error)
}
