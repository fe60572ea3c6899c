package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/repofit/repofit-backend/internal/generate"
	"github.com/repofit/repofit-backend/internal/language"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/retry"
	"github.com/repofit/repofit-backend/internal/sanitize"
	"github.com/repofit/repofit-backend/internal/store"
	"github.com/repofit/repofit-backend/internal/tone"
)

// DescriptionRequest is the input to tailored-description generation.
type DescriptionRequest struct {
	UserID       string
	RepoURL      string
	RepoSummary  string
	JobPosting   string
	ReferenceURL string
}

// DescriptionResult is the sanitized output plus warnings and quota
// state.
type DescriptionResult struct {
	RecordID    string              `json:"recordId"`
	Markdown    string              `json:"markdown"`
	Tone        model.Tone          `json:"tone"`
	RemovedURLs []string            `json:"removedUrls,omitempty"`
	Quota       model.QuotaDecision `json:"quota"`
}

// DescriptionService runs the full flow: quota, tone analysis for
// prompt steering, remote generation, link sanitization, and history.
type DescriptionService struct {
	ledger    *quota.Ledger
	tones     *tone.Service
	generator generate.Generator
	store     store.Store
	retry     retry.Options
	log       zerolog.Logger
}

func NewDescriptionService(ledger *quota.Ledger, tones *tone.Service, gen generate.Generator, st store.Store, retryOpts retry.Options, log zerolog.Logger) *DescriptionService {
	return &DescriptionService{
		ledger:    ledger,
		tones:     tones,
		generator: gen,
		store:     st,
		retry:     retryOpts,
		log:       log,
	}
}

// Generate produces a sanitized, tone-steered project description.
// Quota denials and generation failures are distinct typed conditions;
// tone-analysis failures never surface (the pipeline falls back).
func (s *DescriptionService) Generate(ctx context.Context, req DescriptionRequest) (*DescriptionResult, error) {
	if req.RepoURL == "" || req.JobPosting == "" {
		return nil, fmt.Errorf("%w: repoUrl and jobPosting are required", model.ErrValidation)
	}

	dec, err := s.ledger.Consume(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("quota consume: %w", err)
	}
	if !dec.Allowed {
		return nil, &model.QuotaDeniedError{Decision: dec}
	}

	analysis, err := s.tones.Analyze(ctx, req.JobPosting, req.ReferenceURL)
	if err != nil {
		return nil, err
	}

	markdown, err := retry.Do(ctx, s.retry, language.IsTransient, func(c context.Context) (string, error) {
		return s.generator.GenerateDescription(c, generate.Request{
			RepoURL:     req.RepoURL,
			RepoSummary: req.RepoSummary,
			JobPosting:  req.JobPosting,
			Tone:        analysis.Tone,
			Descriptors: analysis.Descriptors,
			Signals:     analysis.CulturalSignals.Keywords,
		})
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", req.UserID).Msg("generation service failed")
		return nil, fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
	}

	allowed := sanitize.ForRepository(req.RepoURL, req.ReferenceURL)
	clean := sanitize.Sanitize(markdown, allowed)
	if len(clean.RemovedURLs) > 0 {
		s.log.Warn().
			Str("user_id", req.UserID).
			Strs("removed_urls", clean.RemovedURLs).
			Msg("stripped links from generated description")
	}

	rec, err := s.store.Histories().Create(ctx, &model.HistoryRecord{
		UserID:      req.UserID,
		RepoURL:     req.RepoURL,
		Markdown:    clean.Markdown,
		Tone:        analysis.Tone,
		RemovedURLs: clean.RemovedURLs,
	})
	if err != nil {
		// The description is already produced; losing the history row
		// should not fail the request.
		s.log.Error().Err(err).Str("user_id", req.UserID).Msg("history record write failed")
		rec = &model.HistoryRecord{}
	}

	return &DescriptionResult{
		RecordID:    rec.RecordID,
		Markdown:    clean.Markdown,
		Tone:        analysis.Tone,
		RemovedURLs: clean.RemovedURLs,
		Quota:       dec,
	}, nil
}
