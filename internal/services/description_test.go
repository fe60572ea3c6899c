package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repofit/repofit-backend/internal/cache"
	"github.com/repofit/repofit-backend/internal/generate"
	"github.com/repofit/repofit-backend/internal/language"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/retry"
	"github.com/repofit/repofit-backend/internal/store/memory"
	"github.com/repofit/repofit-backend/internal/tone"
)

// --- Fakes ---

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeSentiment(ctx context.Context, text string) (model.Sentiment, error) {
	return model.Sentiment{Score: 0.5, Magnitude: 0.3}, nil
}

func (fakeAnalyzer) AnalyzeEntities(ctx context.Context, text string) ([]model.Entity, error) {
	return []model.Entity{{Name: "fast-paced startup", Salience: 0.5}}, nil
}

func (fakeAnalyzer) ClassifyText(ctx context.Context, text string) ([]model.ContentCategory, error) {
	return nil, nil
}

type fakeGenerator struct {
	markdown string
	err      error
	calls    int
}

func (f *fakeGenerator) GenerateDescription(ctx context.Context, req generate.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.markdown, nil
}

func fastRetry() retry.Options {
	return retry.Options{MaxRetries: 1, Base: time.Millisecond, Cap: time.Millisecond, AttemptTimeout: time.Second}
}

func newDescriptionService(gen generate.Generator) *DescriptionService {
	st := memory.New(quota.DefaultLimits())
	ledger := quota.NewLedger(st, zerolog.Nop())
	tones := tone.NewService(fakeAnalyzer{}, cache.New[model.ToneAnalysis](100), fastRetry(), time.Hour, zerolog.Nop())
	return NewDescriptionService(ledger, tones, gen, st, fastRetry(), zerolog.Nop())
}

const posting = "We are looking for an engineer to join our fast-paced startup team and work with the platform."

func baseRequest() DescriptionRequest {
	return DescriptionRequest{
		UserID:     "u1",
		RepoURL:    "https://github.com/acme/widget",
		JobPosting: posting,
	}
}

func TestGenerateSanitizesOutput(t *testing.T) {
	gen := &fakeGenerator{markdown: "Built [widget](https://github.com/acme/widget). More at [spam](https://evil.example/buy)."}
	svc := newDescriptionService(gen)

	got, err := svc.Generate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Contains(t, got.Markdown, "https://github.com/acme/widget")
	assert.NotContains(t, got.Markdown, "evil.example")
	assert.Contains(t, got.Markdown, "spam", "visible text survives")
	assert.Equal(t, []string{"https://evil.example/buy"}, got.RemovedURLs)
	assert.Equal(t, model.ToneStartup, got.Tone)
	assert.NotEmpty(t, got.RecordID)
}

func TestGenerateWritesHistory(t *testing.T) {
	gen := &fakeGenerator{markdown: "A clean description."}
	svc := newDescriptionService(gen)

	got, err := svc.Generate(context.Background(), baseRequest())
	require.NoError(t, err)

	rec, err := svc.store.Histories().GetByID(context.Background(), "u1", got.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "A clean description.", rec.Markdown)
	assert.Equal(t, model.ToneStartup, rec.Tone)
}

func TestGenerateQuotaDenied(t *testing.T) {
	gen := &fakeGenerator{markdown: "x"}
	svc := newDescriptionService(gen)

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(context.Background(), baseRequest())
		require.NoError(t, err)
	}

	_, err := svc.Generate(context.Background(), baseRequest())
	require.ErrorIs(t, err, model.ErrQuotaExceeded)

	var denied *model.QuotaDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, 0, denied.Decision.Remaining)
	assert.False(t, denied.Decision.ResetsAt.IsZero())
	assert.Equal(t, 0, gen.calls-3, "denied request must not reach the generator")
}

func TestGenerateFailurePropagatesTyped(t *testing.T) {
	gen := &fakeGenerator{err: &language.APIError{StatusCode: 503}}
	svc := newDescriptionService(gen)

	_, err := svc.Generate(context.Background(), baseRequest())
	require.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, 2, gen.calls, "maxRetries=1 means two attempts")
}

func TestGenerateFatalGeneratorErrorNotRetried(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("malformed prompt")}
	svc := newDescriptionService(gen)

	_, err := svc.Generate(context.Background(), baseRequest())
	require.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateValidatesInput(t *testing.T) {
	svc := newDescriptionService(&fakeGenerator{markdown: "x"})

	req := baseRequest()
	req.RepoURL = ""
	_, err := svc.Generate(context.Background(), req)
	require.ErrorIs(t, err, model.ErrValidation)

	req = baseRequest()
	req.JobPosting = ""
	_, err = svc.Generate(context.Background(), req)
	require.ErrorIs(t, err, model.ErrValidation)
}
