package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repofit/repofit-backend/internal/auth"
	"github.com/repofit/repofit-backend/internal/cache"
	"github.com/repofit/repofit-backend/internal/generate"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/retry"
	"github.com/repofit/repofit-backend/internal/services"
	"github.com/repofit/repofit-backend/internal/store/memory"
	"github.com/repofit/repofit-backend/internal/tone"
)

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeSentiment(ctx context.Context, text string) (model.Sentiment, error) {
	return model.Sentiment{Score: 0.4, Magnitude: 0.6}, nil
}

func (stubAnalyzer) AnalyzeEntities(ctx context.Context, text string) ([]model.Entity, error) {
	return []model.Entity{{Name: "fast-paced", Type: "OTHER", Salience: 0.5}}, nil
}

func (stubAnalyzer) ClassifyText(ctx context.Context, text string) ([]model.ContentCategory, error) {
	return []model.ContentCategory{{Name: "/Jobs", Confidence: 0.9}}, nil
}

type stubGenerator struct{}

func (stubGenerator) GenerateDescription(ctx context.Context, req generate.Request) (string, error) {
	return fmt.Sprintf("# Pitch\n\nSee [repo](%s) and [docs](https://evil.example.com/docs).", req.RepoURL), nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := zerolog.Nop()

	st := memory.New(quota.DefaultLimits())
	ledger := quota.NewLedger(st, log)

	retryOpts := retry.Options{MaxRetries: 1, Base: time.Millisecond, Cap: time.Millisecond, AttemptTimeout: time.Second}
	toneCache := cache.New[model.ToneAnalysis](100)
	tones := tone.NewService(stubAnalyzer{}, toneCache, retryOpts, time.Hour, log)

	authorizer, err := auth.ParseStatic("sk-test:user-1,sk-admin:admin")
	require.NoError(t, err)

	return NewRouter(Deps{
		Authorizer:   authorizer,
		Analyses:     services.NewAnalysisService(ledger, tones, log),
		Descriptions: services.NewDescriptionService(ledger, tones, stubGenerator{}, st, retryOpts, log),
		Histories:    services.NewHistoryService(st),
		Ledger:       ledger,
		IsHealthy:    func() bool { return true },
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, key string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthIsOpen(t *testing.T) {
	h := newTestRouter(t)
	rr := doJSON(t, h, http.MethodGet, "/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")
}

func TestMissingOrBadKeyRejected(t *testing.T) {
	h := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/v1/quota", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/v1/quota", "sk-wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAnalyzeJobPosting(t *testing.T) {
	h := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/analyses", "sk-test", map[string]string{
		"text": "Join our fast-paced startup, we move fast and disrupt things",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Analysis model.ToneAnalysis  `json:"analysis"`
		Quota    model.QuotaDecision `json:"quota"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, model.ToneStartup, out.Analysis.Tone)
	assert.Equal(t, 2, out.Quota.Remaining)
}

func TestAnalyzeValidation(t *testing.T) {
	h := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/analyses", "sk-test", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	long := make([]byte, maxPostingLength+1)
	for i := range long {
		long[i] = 'a'
	}
	rr = doJSON(t, h, http.MethodPost, "/v1/analyses", "sk-test", map[string]string{"text": string(long)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuotaDeniedReturns429(t *testing.T) {
	h := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rr := doJSON(t, h, http.MethodPost, "/v1/analyses", "sk-test", map[string]string{
			"text": fmt.Sprintf("posting number %d about teamwork", i),
		})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := doJSON(t, h, http.MethodPost, "/v1/analyses", "sk-test", map[string]string{
		"text": "one posting too many",
	})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	var denied quotaDeniedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &denied))
	assert.Equal(t, 0, denied.Remaining)
	assert.False(t, denied.ResetsAt.IsZero())
}

func TestGenerateDescriptionAndHistory(t *testing.T) {
	h := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/descriptions", "sk-test", map[string]string{
		"repoUrl":    "https://github.com/acme/widget",
		"jobPosting": "We need a Go engineer for our fast-paced startup",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var out services.DescriptionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Contains(t, out.Markdown, "https://github.com/acme/widget")
	assert.NotContains(t, out.Markdown, "evil.example.com")
	assert.Equal(t, []string{"https://evil.example.com/docs"}, out.RemovedURLs)
	require.NotEmpty(t, out.RecordID)

	// The record is retrievable and deletable by its owner.
	rr = doJSON(t, h, http.MethodGet, "/v1/history/"+out.RecordID, "sk-test", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/v1/history", "sk-test", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	rr = doJSON(t, h, http.MethodDelete, "/v1/history/"+out.RecordID, "sk-test", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/v1/history/"+out.RecordID, "sk-test", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuotaViewAndSetTier(t *testing.T) {
	h := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/v1/quota", "sk-test", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var view quota.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, model.TierFree, view.Tier)
	assert.Equal(t, 3, view.Remaining)

	rr = doJSON(t, h, http.MethodPut, "/v1/admin/users/user-1/tier", "sk-admin", map[string]string{"tier": "pro"})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/v1/quota", "sk-test", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, model.TierPro, view.Tier)
	assert.Equal(t, quota.Unlimited, view.Remaining)

	rr = doJSON(t, h, http.MethodPut, "/v1/admin/users/user-1/tier", "sk-admin", map[string]string{"tier": "platinum"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
