package tone

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/repofit/repofit-backend/internal/cache"
	"github.com/repofit/repofit-backend/internal/language"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/retry"
)

// cacheKeySourceLimit bounds how much posting text feeds the cache key
// when no reference URL is supplied.
const cacheKeySourceLimit = 2000

// Service orchestrates tone analysis: cache lookup, concurrent remote
// calls with retries, rule classification, and the deterministic
// fallback when the language API is unavailable. Analyze always
// returns a result; transient errors never escape it.
type Service struct {
	analyzer language.Analyzer
	cache    *cache.Cache[model.ToneAnalysis]
	retry    retry.Options
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewService wires a pipeline. The cache is shared process-wide state
// owned by the caller.
func NewService(analyzer language.Analyzer, c *cache.Cache[model.ToneAnalysis], retryOpts retry.Options, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		cache:    c,
		retry:    retryOpts,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the pipeline clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Analyze classifies the tone of a job posting. referenceURL, when
// present, drives the cache key; otherwise a prefix of the text does.
func (s *Service) Analyze(ctx context.Context, text, referenceURL string) (model.ToneAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return model.ToneAnalysis{}, fmt.Errorf("%w: empty posting text", model.ErrValidation)
	}

	key := CacheKey(text, referenceURL)
	if hit, ok := s.cache.Get(key); ok {
		hit.Metadata.APICallMade = false
		s.log.Debug().Str("cache_key", key).Msg("tone analysis cache hit")
		return hit, nil
	}

	lang := detectLanguage(text)

	var (
		wg sync.WaitGroup

		sent    model.Sentiment
		sentErr error

		entities    []model.Entity
		entitiesErr error

		categories []model.ContentCategory
	)

	// Settle-join: each call retries independently and a failure never
	// cancels its siblings.
	wg.Add(2)
	go func() {
		defer wg.Done()
		sent, sentErr = retry.Do(ctx, s.retry, language.IsTransient, func(c context.Context) (model.Sentiment, error) {
			return s.analyzer.AnalyzeSentiment(c, text)
		})
	}()
	go func() {
		defer wg.Done()
		entities, entitiesErr = retry.Do(ctx, s.retry, language.IsTransient, func(c context.Context) ([]model.Entity, error) {
			return s.analyzer.AnalyzeEntities(c, text)
		})
	}()
	if lang == model.LangEnglish {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cats, err := retry.Do(ctx, s.retry, language.IsTransient, func(c context.Context) ([]model.ContentCategory, error) {
				return s.analyzer.ClassifyText(c, text)
			})
			if err != nil {
				// Categories are decorative; losing them is not a
				// reason to discard sentiment and entities.
				s.log.Warn().Err(err).Msg("content classification failed")
				return
			}
			categories = cats
		}()
	}
	wg.Wait()

	if sentErr != nil || entitiesErr != nil {
		s.log.Warn().
			AnErr("sentiment_err", sentErr).
			AnErr("entities_err", entitiesErr).
			Str("cache_key", key).
			Msg("language api unavailable, using fallback classification")
		fb := classifyFallback(text, lang, key, s.now())
		// Cached too: the fallback is deterministic per input, so
		// repeated failures skip the slow path.
		s.cache.Set(key, fb, s.ttl)
		return fb, nil
	}

	cls := Classify(sent, entities)

	keywordSentiments := make(map[string]float64, len(cls.Keywords))
	for _, kw := range cls.Keywords {
		keywordSentiments[kw] = sent.Score
	}

	out := model.ToneAnalysis{
		Sentiment:        sent,
		Tone:             cls.Tone,
		Descriptors:      cls.Descriptors,
		DetectedLanguage: lang,
		Confidence:       cls.Confidence,
		CulturalSignals: model.CulturalSignals{
			Keywords:          cls.Keywords,
			KeywordSentiments: keywordSentiments,
		},
		ContentCategories: categories,
		Entities:          entities,
		Metadata: model.AnalysisMetadata{
			APICallMade: true,
			CacheKey:    key,
			AnalyzedAt:  s.now(),
		},
	}
	s.cache.Set(key, out, s.ttl)
	return out, nil
}

// CacheKey derives the memoization key: the lowercased reference URL
// when present, else a bounded prefix of the posting text.
func CacheKey(text, referenceURL string) string {
	src := strings.ToLower(strings.TrimSpace(referenceURL))
	if src == "" {
		src = text
		if len(src) > cacheKeySourceLimit {
			src = src[:cacheKeySourceLimit]
		}
	}
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
