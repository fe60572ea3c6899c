package tone

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repofit/repofit-backend/internal/cache"
	"github.com/repofit/repofit-backend/internal/language"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/retry"
)

func fixedTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// fakeAnalyzer lets each remote operation be scripted independently.
type fakeAnalyzer struct {
	sentiment     model.Sentiment
	sentimentErr  error
	entities      []model.Entity
	entitiesErr   error
	categories    []model.ContentCategory
	classifyErr   error
	sentimentHits atomic.Int64
	entityHits    atomic.Int64
	classifyHits  atomic.Int64
}

func (f *fakeAnalyzer) AnalyzeSentiment(ctx context.Context, text string) (model.Sentiment, error) {
	f.sentimentHits.Add(1)
	return f.sentiment, f.sentimentErr
}

func (f *fakeAnalyzer) AnalyzeEntities(ctx context.Context, text string) ([]model.Entity, error) {
	f.entityHits.Add(1)
	return f.entities, f.entitiesErr
}

func (f *fakeAnalyzer) ClassifyText(ctx context.Context, text string) ([]model.ContentCategory, error) {
	f.classifyHits.Add(1)
	return f.categories, f.classifyErr
}

func testRetryOptions() retry.Options {
	return retry.Options{
		MaxRetries:     2,
		Base:           time.Millisecond,
		Cap:            2 * time.Millisecond,
		AttemptTimeout: time.Second,
	}
}

func newTestService(a language.Analyzer) *Service {
	c := cache.New[model.ToneAnalysis](100)
	return NewService(a, c, testRetryOptions(), 24*time.Hour, zerolog.Nop()).
		WithClock(fixedTime)
}

const englishPosting = "We are looking for an engineer to join our fast-paced startup team and work with the platform group."

func TestAnalyzeSuccess(t *testing.T) {
	fake := &fakeAnalyzer{
		sentiment:  model.Sentiment{Score: 0.5, Magnitude: 0.3},
		entities:   []model.Entity{{Name: "fast-paced startup", Salience: 0.5}},
		categories: []model.ContentCategory{{Name: "/Jobs & Education", Confidence: 0.9}},
	}
	svc := newTestService(fake)

	got, err := svc.Analyze(context.Background(), englishPosting, "https://jobs.example.com/123")
	require.NoError(t, err)

	assert.Equal(t, model.ToneStartup, got.Tone)
	assert.True(t, got.Metadata.APICallMade)
	assert.Equal(t, model.LangEnglish, got.DetectedLanguage)
	assert.Equal(t, fake.categories, got.ContentCategories)
	assert.Equal(t, fake.entities, got.Entities)
	assert.NotEmpty(t, got.Metadata.CacheKey)
	assert.Equal(t, fixedTime(), got.Metadata.AnalyzedAt)
}

func TestAnalyzeCacheHit(t *testing.T) {
	fake := &fakeAnalyzer{
		sentiment: model.Sentiment{Score: 0.5, Magnitude: 0.3},
		entities:  []model.Entity{{Name: "fast-paced", Salience: 0.5}},
	}
	svc := newTestService(fake)

	first, err := svc.Analyze(context.Background(), englishPosting, "https://jobs.example.com/123")
	require.NoError(t, err)
	require.True(t, first.Metadata.APICallMade)

	second, err := svc.Analyze(context.Background(), englishPosting, "https://jobs.example.com/123")
	require.NoError(t, err)
	assert.False(t, second.Metadata.APICallMade)
	assert.Equal(t, first.Tone, second.Tone)
	assert.Equal(t, int64(1), fake.sentimentHits.Load(), "second call must not hit the API")
}

func TestAnalyzeFallbackWhenSentimentFails(t *testing.T) {
	fake := &fakeAnalyzer{
		sentimentErr: &language.APIError{StatusCode: 503},
		entities:     []model.Entity{{Name: "enterprise", Salience: 0.5}},
	}
	svc := newTestService(fake)

	got, err := svc.Analyze(context.Background(), englishPosting, "https://jobs.example.com/fail")
	require.NoError(t, err, "transient failures must never escape Analyze")

	assert.Equal(t, 0.5, got.Confidence)
	assert.False(t, got.Metadata.APICallMade)
	assert.Equal(t, model.ToneStartup, got.Tone, "fallback ladder sees fast-paced in raw text")
	assert.Empty(t, got.Entities, "partial results are discarded")

	// Retries exhausted: maxRetries=2 means 3 attempts.
	assert.Equal(t, int64(3), fake.sentimentHits.Load())
	// The entities call still ran to completion (settle semantics).
	assert.GreaterOrEqual(t, fake.entityHits.Load(), int64(1))
}

func TestFallbackResultIsCached(t *testing.T) {
	fake := &fakeAnalyzer{
		sentimentErr: &language.APIError{StatusCode: 503},
	}
	svc := newTestService(fake)

	_, err := svc.Analyze(context.Background(), englishPosting, "https://jobs.example.com/fail")
	require.NoError(t, err)
	attempts := fake.sentimentHits.Load()

	_, err = svc.Analyze(context.Background(), englishPosting, "https://jobs.example.com/fail")
	require.NoError(t, err)
	assert.Equal(t, attempts, fake.sentimentHits.Load(), "repeated failure must be served from cache")
}

func TestClassifyFailureDoesNotTriggerFallback(t *testing.T) {
	fake := &fakeAnalyzer{
		sentiment:   model.Sentiment{Score: 0.5, Magnitude: 0.3},
		entities:    []model.Entity{{Name: "fast-paced", Salience: 0.5}},
		classifyErr: &language.APIError{StatusCode: 500},
	}
	svc := newTestService(fake)

	got, err := svc.Analyze(context.Background(), englishPosting, "")
	require.NoError(t, err)
	assert.True(t, got.Metadata.APICallMade)
	assert.Empty(t, got.ContentCategories)
	assert.Equal(t, model.ToneStartup, got.Tone)
}

func TestClassifySkippedForNonEnglish(t *testing.T) {
	fake := &fakeAnalyzer{
		sentiment: model.Sentiment{Score: 0.1, Magnitude: 0.3},
		entities:  []model.Entity{{Name: "empresa", Salience: 0.5}},
	}
	svc := newTestService(fake)

	spanish := "Buscamos un ingeniero para trabajar en el equipo de la plataforma con nuestro grupo."
	got, err := svc.Analyze(context.Background(), spanish, "")
	require.NoError(t, err)

	assert.Equal(t, model.LangSpanish, got.DetectedLanguage)
	assert.Equal(t, int64(0), fake.classifyHits.Load())
}

func TestAnalyzeRejectsEmptyText(t *testing.T) {
	svc := newTestService(&fakeAnalyzer{})
	_, err := svc.Analyze(context.Background(), "   ", "")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestCacheKeyDerivation(t *testing.T) {
	// Reference URL wins and is case-insensitive.
	assert.Equal(t,
		CacheKey("text a", "https://Example.com/Job"),
		CacheKey("text b", "https://example.com/job"))

	// Without a URL, only the first 2000 chars of text matter.
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	base := string(long)
	assert.Equal(t, CacheKey(base, ""), CacheKey(base+"suffix-beyond-limit", ""))
	assert.NotEqual(t, CacheKey("one", ""), CacheKey("two", ""))
}
