// Package tone classifies the voice of a job posting. The classifier
// itself is a pure function over sentiment and salient entities; the
// pipeline in this package adds caching, remote calls, and fallback.
package tone

import (
	"math"
	"strings"

	"github.com/repofit/repofit-backend/internal/model"
)

// Heuristic constants. Calibration comes from the original product;
// they are preserved verbatim rather than re-derived.
const (
	salienceFloor = 0.1

	positiveScoreFloor = 0.3 // startup, innovative
	casualScoreFloor   = 0.2
	neutralScoreBand   = 0.2 // corporate: -band < score < band
	formalMagnitudeCap = 0.5

	confidenceBase         = 0.45
	confidenceSignalWeight = 0.4
	scoreWeight            = 0.7
	magnitudeWeight        = 0.3
	magnitudeScale         = 2.0
	keywordBonusStep       = 0.06
	keywordBonusCap        = 0.25
)

// Classification is the pure classifier output.
type Classification struct {
	Tone        model.Tone
	Descriptors []string
	Keywords    []string
	Confidence  float64
}

// signals carries the inputs each rule predicate sees.
type signals struct {
	score      float64
	magnitude  float64
	entityText string // lowercased join of all entity names
	matched    map[model.Tone][]string
}

func (s *signals) has(t model.Tone) bool { return len(s.matched[t]) > 0 }

// anyInEntityText reports whether any keyword from the list occurs in
// the raw entity text, salient or not.
func (s *signals) anyInEntityText(list []string) bool {
	for _, kw := range list {
		if strings.Contains(s.entityText, kw) {
			return true
		}
	}
	return false
}

// rules is the ordered tone ladder: first predicate that fires wins.
var rules = []struct {
	tone model.Tone
	pred func(*signals) bool
}{
	{model.ToneStartup, func(s *signals) bool {
		return s.score > positiveScoreFloor && (s.has(model.ToneStartup) || s.anyInEntityText(startupKeywords))
	}},
	{model.ToneInnovative, func(s *signals) bool {
		return s.score > positiveScoreFloor && s.has(model.ToneInnovative)
	}},
	{model.ToneCasual, func(s *signals) bool {
		return s.score > casualScoreFloor && s.has(model.ToneCasual)
	}},
	{model.ToneFormal, func(s *signals) bool {
		return s.magnitude < formalMagnitudeCap && s.has(model.ToneFormal)
	}},
	{model.ToneCorporate, func(s *signals) bool {
		return s.score > -neutralScoreBand && s.score < neutralScoreBand && s.has(model.ToneCorporate)
	}},
}

// Classify resolves a tone from sentiment and salient entities. It is
// deterministic and side-effect-free.
func Classify(sent model.Sentiment, entities []model.Entity) Classification {
	s := extractSignals(sent, entities)

	tone := model.ToneCorporate
	for _, r := range rules {
		if r.pred(s) {
			tone = r.tone
			break
		}
	}

	keywords := uniqueKeywords(s.matched)
	return Classification{
		Tone:        tone,
		Descriptors: toneDescriptors[tone],
		Keywords:    keywords,
		Confidence:  confidence(sent, len(keywords)),
	}
}

func extractSignals(sent model.Sentiment, entities []model.Entity) *signals {
	s := &signals{
		score:     sent.Score,
		magnitude: sent.Magnitude,
		matched:   make(map[model.Tone][]string),
	}

	var all strings.Builder
	for _, e := range entities {
		name := strings.ToLower(e.Name)
		all.WriteString(name)
		all.WriteByte(' ')
		if e.Salience <= salienceFloor {
			continue
		}
		s.collect(model.ToneStartup, name, startupKeywords)
		s.collect(model.ToneCorporate, name, corporateKeywords)
		s.collect(model.ToneInnovative, name, innovativeKeywords)
		s.collect(model.ToneFormal, name, formalKeywords)
		s.collect(model.ToneCasual, name, casualKeywords)
	}
	s.entityText = all.String()
	return s
}

func (s *signals) collect(t model.Tone, name string, list []string) {
	for _, kw := range list {
		if strings.Contains(name, kw) {
			s.matched[t] = append(s.matched[t], kw)
		}
	}
}

func uniqueKeywords(matched map[model.Tone][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	// Iterate in ladder order so output order is deterministic.
	for _, r := range rules {
		for _, kw := range matched[r.tone] {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// confidence blends sentiment strength with keyword evidence, clamped
// to [0,1].
func confidence(sent model.Sentiment, keywordCount int) float64 {
	strength := math.Abs(sent.Score)*scoreWeight +
		math.Min(1, sent.Magnitude/magnitudeScale)*magnitudeWeight
	strength = math.Min(1, strength)

	bonus := math.Min(keywordBonusCap, float64(keywordCount)*keywordBonusStep)
	return math.Min(1, confidenceBase+strength*confidenceSignalWeight+bonus)
}
