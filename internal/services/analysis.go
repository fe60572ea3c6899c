// Package services composes the core subsystems into the operations
// the HTTP layer exposes.
package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/tone"
)

// AnalysisResult pairs a tone analysis with the quota state after the
// consume that paid for it.
type AnalysisResult struct {
	Analysis model.ToneAnalysis  `json:"analysis"`
	Quota    model.QuotaDecision `json:"quota"`
}

// AnalysisService runs quota-gated tone analysis of job postings.
type AnalysisService struct {
	ledger *quota.Ledger
	tones  *tone.Service
	log    zerolog.Logger
}

func NewAnalysisService(ledger *quota.Ledger, tones *tone.Service, log zerolog.Logger) *AnalysisService {
	return &AnalysisService{ledger: ledger, tones: tones, log: log}
}

// AnalyzeJobPosting consumes one quota unit, then classifies the
// posting's tone. A quota denial surfaces as *model.QuotaDeniedError,
// never as a silent degradation.
func (s *AnalysisService) AnalyzeJobPosting(ctx context.Context, userID, text, referenceURL string) (*AnalysisResult, error) {
	dec, err := s.ledger.Consume(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("quota consume: %w", err)
	}
	if !dec.Allowed {
		return nil, &model.QuotaDeniedError{Decision: dec}
	}

	analysis, err := s.tones.Analyze(ctx, text, referenceURL)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("tone", string(analysis.Tone)).
		Bool("api_call_made", analysis.Metadata.APICallMade).
		Msg("job posting analyzed")

	return &AnalysisResult{Analysis: analysis, Quota: dec}, nil
}
