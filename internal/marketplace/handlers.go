package marketplace

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/sitter-backend/internal/auth"
	"github.com/imadgeboyega/sitter-backend/internal/common/utils"
	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SearchMatches(w http.ResponseWriter, r *http.Request) {
	var dto SearchMatchesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.FindMatches(r.Context(), dto.toRequest(), dto.Limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to find matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, newSearchMatchesResponse(results))
}

func (h *Handler) GetTrustScore(w http.ResponseWriter, r *http.Request) {
	sitterID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid sitter ID")
		return
	}

	score, err := h.service.GetTrustScore(r.Context(), sitterID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to calculate trust score")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, score)
}

func (h *Handler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	sitterID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid sitter ID")
		return
	}

	var dto PriceQuoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if dto.StartTime.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "start_time is required")
		return
	}

	quote, err := h.service.QuotePrice(r.Context(), sitterID, dto.Location.point(), dto.StartTime)
	if err != nil {
		respondWithServiceError(w, err, "Failed to quote price")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, quote)
}

func (h *Handler) GetBehaviorProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.service.GetBehaviorProfile(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to analyze booking history")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, newBehaviorProfileResponse(profile))
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	var childID int64
	if v := query.Get("child_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid child_id")
			return
		}
		childID = id
	}

	timeframe := recommendations.Timeframe{Days: recommendations.DefaultHorizonDays}
	if v := query.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 || days > recommendations.MaxHorizonDays {
			utils.RespondWithError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		timeframe.Days = days
	}

	recs, err := h.service.GetRecommendations(r.Context(), userID, timeframe)
	if err != nil {
		respondWithServiceError(w, err, "Failed to generate recommendations")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, RecommendationsResponse{
		ChildID:         childID,
		TimeframeDays:   timeframe.Days,
		Recommendations: recs,
	})
}

func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, matching.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, matching.ErrInvalidInput):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
