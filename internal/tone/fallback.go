package tone

import (
	"strings"
	"time"

	"github.com/repofit/repofit-backend/internal/model"
)

// fallbackConfidence is the fixed confidence of the keyword-ladder
// path used when the language API is unavailable.
const fallbackConfidence = 0.5

// fallbackLadder is evaluated in the same priority order as the main
// classifier, directly over raw text.
var fallbackLadder = []struct {
	tone model.Tone
	list []string
}{
	{model.ToneStartup, startupKeywords},
	{model.ToneInnovative, innovativeKeywords},
	{model.ToneCasual, casualKeywords},
	{model.ToneFormal, formalKeywords},
	{model.ToneCorporate, corporateKeywords},
}

// classifyFallback produces a deterministic low-confidence analysis
// without any remote call. Keyword and entity data stay empty so
// callers can tell the two paths apart.
func classifyFallback(text string, lang model.Language, cacheKey string, analyzedAt time.Time) model.ToneAnalysis {
	lower := strings.ToLower(text)

	resolved := model.ToneCorporate
ladder:
	for _, step := range fallbackLadder {
		for _, kw := range step.list {
			if strings.Contains(lower, kw) {
				resolved = step.tone
				break ladder
			}
		}
	}

	return model.ToneAnalysis{
		Tone:             resolved,
		Descriptors:      toneDescriptors[resolved],
		DetectedLanguage: lang,
		Confidence:       fallbackConfidence,
		CulturalSignals:  model.CulturalSignals{Keywords: []string{}},
		Metadata: model.AnalysisMetadata{
			APICallMade: false,
			CacheKey:    cacheKey,
			AnalyzedAt:  analyzedAt,
		},
	}
}
