package model

import "time"

// Tone is a coarse qualitative category describing the voice of a job posting.
type Tone string

const (
	ToneFormal     Tone = "formal"
	ToneCasual     Tone = "casual"
	ToneInnovative Tone = "innovative"
	ToneCorporate  Tone = "corporate"
	ToneStartup    Tone = "startup"
)

// Language is the detected document language, three-way. Detection is a
// heuristic used only to gate the content-classification call.
type Language string

const (
	LangEnglish Language = "en"
	LangSpanish Language = "es"
	LangOther   Language = "other"
)

// Sentiment is the document-level sentiment returned by the language API.
// Score is in [-1,1]; Magnitude is >= 0.
type Sentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// Entity is a salient entity extracted from the document. Salience is a
// 0-1 score for how central the entity is to the document's meaning.
type Entity struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Salience float64 `json:"salience"`
}

// ContentCategory is a document-level topic classification.
type ContentCategory struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// CulturalSignals carries the keyword evidence behind a tone decision.
type CulturalSignals struct {
	Keywords          []string           `json:"keywords"`
	KeywordSentiments map[string]float64 `json:"keywordSentiments,omitempty"`
}

// AnalysisMetadata records provenance for a ToneAnalysis.
type AnalysisMetadata struct {
	APICallMade bool      `json:"apiCallMade"`
	CacheKey    string    `json:"cacheKey"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}

// ToneAnalysis is the full result of classifying a job posting's tone.
// Created once per unique input, immutable after creation, and re-emitted
// from cache with APICallMade=false.
type ToneAnalysis struct {
	Sentiment         Sentiment         `json:"sentiment"`
	Tone              Tone              `json:"tone"`
	Descriptors       []string          `json:"descriptors"`
	DetectedLanguage  Language          `json:"detectedLanguage"`
	Confidence        float64           `json:"confidence"`
	CulturalSignals   CulturalSignals   `json:"culturalSignals"`
	ContentCategories []ContentCategory `json:"contentCategories,omitempty"`
	Entities          []Entity          `json:"entities,omitempty"`
	Metadata          AnalysisMetadata  `json:"metadata"`
}

// Tier is a subscription tier. Free tier carries a monthly allowance;
// pro tier is unlimited.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// QuotaRecord is the per-user usage ledger row. It is mutated only
// inside a single store transaction.
type QuotaRecord struct {
	UserID        string    `json:"userId"`
	Tier          Tier      `json:"tier"`
	PeriodCount   int       `json:"periodCount"`
	PeriodResetAt time.Time `json:"periodResetAt"`
	UpdateTime    time.Time `json:"updateTime,omitempty"`
}

// QuotaDecision is the outcome of an atomic check-and-consume.
// Remaining is -1 for unlimited tiers.
type QuotaDecision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
	Tier      Tier      `json:"tier"`
}

// HistoryRecord stores one generated project description for a user.
type HistoryRecord struct {
	RecordID     string    `json:"recordId"`
	UserID       string    `json:"userId"`
	RepoURL      string    `json:"repoUrl"`
	Markdown     string    `json:"markdown"`
	Tone         Tone      `json:"tone"`
	RemovedURLs  []string  `json:"removedUrls,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}
