package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(NewJWTClaims(42, "parent", time.Hour), "secret")
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "parent", claims.Role)
	assert.Equal(t, "sitter-backend", claims.Issuer)
}

func TestValidateJWTRejects(t *testing.T) {
	valid, err := GenerateJWT(NewJWTClaims(1, "sitter", time.Hour), "secret")
	require.NoError(t, err)
	expired, err := GenerateJWT(NewJWTClaims(1, "sitter", -time.Hour), "secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other"},
		{"expired", expired, "secret"},
		{"garbage", "not.a.token", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

type quoteInput struct {
	Rate  float64 `json:"rate" validate:"gt=0"`
	Kind  string  `json:"kind" validate:"required,oneof=a b"`
	Limit int     `json:"limit" validate:"gte=0,lte=100"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(quoteInput{Rate: 1, Kind: "a", Limit: 10}))

	err := ValidateStruct(quoteInput{Rate: 0, Kind: "", Limit: 101})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate must be greater than 0")
	assert.Contains(t, err.Error(), "Kind is required")
	assert.Contains(t, err.Error(), "Limit must be at most 100")
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"bad input"}`, rec.Body.String())
}
