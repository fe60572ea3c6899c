package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/repofit/repofit-backend/internal/api/recovery"
	"github.com/repofit/repofit-backend/internal/auth"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/services"
)

// Deps carries the constructed services the router exposes.
type Deps struct {
	Authorizer   auth.Authorizer
	Analyses     *services.AnalysisService
	Descriptions *services.DescriptionService
	Histories    *services.HistoryService
	Ledger       *quota.Ledger
	IsHealthy    func() bool
}

// NewRouter wires all HTTP routes. Everything except health requires a
// valid API key.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Health stays open for load balancer probes.
	health := NewHealthHandler(d.IsHealthy)
	root.HandleFunc("/v1/health", health.CheckHealth).Methods(http.MethodGet)

	v1 := root.PathPrefix("/v1").Subrouter()
	v1.Use(RequireAuth(d.Authorizer))

	analysis := NewAnalysisHandler(d.Analyses)
	v1.HandleFunc("/analyses", analysis.AnalyzeJobPosting).Methods(http.MethodPost)

	description := NewDescriptionHandler(d.Descriptions)
	v1.HandleFunc("/descriptions", description.GenerateDescription).Methods(http.MethodPost)

	quotaHandler := NewQuotaHandler(d.Ledger)
	v1.HandleFunc("/quota", quotaHandler.GetQuota).Methods(http.MethodGet)
	v1.HandleFunc("/admin/users/{userId}/tier", quotaHandler.SetTier).Methods(http.MethodPut)

	history := NewHistoryHandler(d.Histories)
	v1.HandleFunc("/history", history.ListHistory).Methods(http.MethodGet)
	v1.HandleFunc("/history/{recordId}", history.GetHistory).Methods(http.MethodGet)
	v1.HandleFunc("/history/{recordId}", history.DeleteHistory).Methods(http.MethodDelete)

	return root
}
