package marketplace

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/sitter-backend/internal/auth"
	"github.com/imadgeboyega/sitter-backend/internal/common/ratelimit"
	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

// RegisterRoutes mounts the API under /api/v1. limiter may be nil.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware, limiter *ratelimit.Limiter) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)
	if limiter != nil {
		api.Use(limiter.Middleware(auth.ClientKey))
	}

	parentsOnly := authMiddleware.RequireRole(string(matching.RoleParent), string(matching.RoleAdmin))

	// Matching
	api.Handle("/matches/search", parentsOnly(http.HandlerFunc(handler.SearchMatches))).Methods("POST")

	// Sitters
	api.HandleFunc("/sitters/{id:[0-9]+}/trust-score", handler.GetTrustScore).Methods("GET")
	api.HandleFunc("/sitters/{id:[0-9]+}/price-quote", handler.QuotePrice).Methods("POST")

	// Parents
	api.Handle("/parents/me/behavior", parentsOnly(http.HandlerFunc(handler.GetBehaviorProfile))).Methods("GET")
	api.Handle("/recommendations", parentsOnly(http.HandlerFunc(handler.GetRecommendations))).Methods("GET")
}
