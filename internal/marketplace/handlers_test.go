package marketplace

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/sitter-backend/internal/auth"
	"github.com/imadgeboyega/sitter-backend/internal/common/ratelimit"
	"github.com/imadgeboyega/sitter-backend/internal/common/utils"
)

const testSecret = "handler-secret"

func newTestRouter(t *testing.T, repo Repository, limiter *ratelimit.Limiter) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(newTestService(t, repo, nil)), auth.NewMiddleware(testSecret), limiter)
	return router
}

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(utils.NewJWTClaims(userID, role, time.Hour), testSecret)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, router http.Handler, method, path, authHeader string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func searchBody() SearchMatchesDTO {
	return SearchMatchesDTO{
		Location:      LocationDTO{Latitude: nyc.Latitude, Longitude: nyc.Longitude},
		MaxDistanceKm: 10,
		StartTime:     windowStart,
		EndTime:       windowStart.Add(4 * time.Hour),
		BudgetMin:     15,
		BudgetMax:     20,
	}
}

func TestSearchMatchesHandler(t *testing.T) {
	router := newTestRouter(t, newFakeRepo(sitter(1)), nil)

	rec := do(t, router, http.MethodPost, "/api/v1/matches/search", token(t, 5, "parent"), searchBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			CandidateID     int64              `json:"candidate_id"`
			OverallScore    float64            `json:"overall_score"`
			MatchPercentage float64            `json:"match_percentage"`
			Scores          map[string]float64 `json:"scores"`
			Warnings        []string           `json:"warnings"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)

	result := resp.Results[0]
	assert.Equal(t, int64(1), result.CandidateID)
	assert.Equal(t, Percentage(result.OverallScore), result.MatchPercentage)
	assert.InDelta(t, 99.6, result.MatchPercentage, 0.11)
	assert.Len(t, result.Scores, 7)
	for _, s := range result.Scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestSearchMatchesHandlerErrors(t *testing.T) {
	failing := newFakeRepo()
	failing.findErr = errors.New("db down")

	backwards := searchBody()
	backwards.EndTime = backwards.StartTime.Add(-time.Hour)

	budget := searchBody()
	budget.BudgetMin = 30

	badPriority := searchBody()
	badPriority.Priorities.Safety = 1.5

	noStart := map[string]interface{}{
		"location":   map[string]float64{"latitude": nyc.Latitude, "longitude": nyc.Longitude},
		"end_time":   windowStart.Add(4 * time.Hour),
		"budget_min": 15,
		"budget_max": 20,
	}

	tests := []struct {
		name string
		repo *fakeRepo
		auth string
		body interface{}
		want int
	}{
		{"no token", newFakeRepo(), "", searchBody(), http.StatusUnauthorized},
		{"sitter role", newFakeRepo(), token(t, 5, "sitter"), searchBody(), http.StatusForbidden},
		{"window backwards", newFakeRepo(), token(t, 5, "parent"), backwards, http.StatusBadRequest},
		{"budget inverted", newFakeRepo(), token(t, 5, "parent"), budget, http.StatusBadRequest},
		{"priority out of range", newFakeRepo(), token(t, 5, "parent"), badPriority, http.StatusBadRequest},
		{"missing start time", newFakeRepo(), token(t, 5, "parent"), noStart, http.StatusBadRequest},
		{"malformed json", newFakeRepo(), token(t, 5, "parent"), "not an object", http.StatusBadRequest},
		{"repository failure", failing, token(t, 5, "parent"), searchBody(), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(t, tt.repo, nil), http.MethodPost, "/api/v1/matches/search", tt.auth, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestTrustScoreHandler(t *testing.T) {
	router := newTestRouter(t, newFakeRepo(sitter(1)), nil)
	authHeader := token(t, 5, "parent")

	rec := do(t, router, http.MethodGet, "/api/v1/sitters/1/trust-score", authHeader, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var score struct {
		CandidateID int64   `json:"candidate_id"`
		Overall     float64 `json:"overall"`
		RiskLevel   string  `json:"risk_level"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, int64(1), score.CandidateID)
	assert.NotEmpty(t, score.RiskLevel)

	rec = do(t, router, http.MethodGet, "/api/v1/sitters/404/trust-score", authHeader, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/sitters/abc/trust-score", authHeader, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "non-numeric ids do not match the route")
}

func TestPriceQuoteHandler(t *testing.T) {
	router := newTestRouter(t, newFakeRepo(sitter(1)), nil)
	authHeader := token(t, 5, "parent")

	body := PriceQuoteDTO{
		Location:  LocationDTO{Latitude: nyc.Latitude, Longitude: nyc.Longitude},
		StartTime: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
	}
	rec := do(t, router, http.MethodPost, "/api/v1/sitters/1/price-quote", authHeader, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quote struct {
		HourlyRate float64 `json:"hourly_rate"`
		TimeBand   string  `json:"time_band"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.InDelta(t, 22.5, quote.HourlyRate, 1e-9)
	assert.Equal(t, "standard", quote.TimeBand)

	rec = do(t, router, http.MethodPost, "/api/v1/sitters/1/price-quote", authHeader, PriceQuoteDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body.Location.Latitude = 120
	rec = do(t, router, http.MethodPost, "/api/v1/sitters/1/price-quote", authHeader, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBehaviorProfileHandler(t *testing.T) {
	router := newTestRouter(t, newFakeRepo(), nil)

	rec := do(t, router, http.MethodGet, "/api/v1/parents/me/behavior", token(t, 5, "parent"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		PreferredDays []string `json:"preferred_days"`
		Frequency     string   `json:"frequency"`
		ColdStart     bool     `json:"cold_start"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, []string{"friday", "saturday"}, profile.PreferredDays)
	assert.Equal(t, "weekly", profile.Frequency)
	assert.True(t, profile.ColdStart)
}

func TestRecommendationsHandler(t *testing.T) {
	router := newTestRouter(t, newFakeRepo(), nil)
	authHeader := token(t, 5, "parent")

	rec := do(t, router, http.MethodGet, "/api/v1/recommendations?child_id=3&days=30", authHeader, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ChildID         int64 `json:"child_id"`
		TimeframeDays   int   `json:"timeframe_days"`
		Recommendations []struct {
			ID         string  `json:"id"`
			Kind       string  `json:"kind"`
			Confidence float64 `json:"confidence"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.ChildID)
	assert.Equal(t, 30, resp.TimeframeDays)
	assert.NotEmpty(t, resp.Recommendations)

	for _, path := range []string{
		"/api/v1/recommendations?days=0",
		"/api/v1/recommendations?days=400",
		"/api/v1/recommendations?child_id=x",
	} {
		rec = do(t, router, http.MethodGet, path, authHeader, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryCounter(nil), 1, time.Minute)
	router := newTestRouter(t, newFakeRepo(sitter(1)), limiter)
	authHeader := token(t, 5, "parent")

	rec := do(t, router, http.MethodGet, "/api/v1/sitters/1/trust-score", authHeader, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/sitters/1/trust-score", authHeader, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/sitters/1/trust-score", token(t, 6, "parent"), nil)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per user")
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 50.0, Percentage(0.5))
	assert.Equal(t, 100.0, Percentage(1.2))
	assert.Equal(t, 0.0, Percentage(-0.1))
	assert.Equal(t, 12.3, Percentage(0.1234))
}
