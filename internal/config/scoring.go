// internal/config/scoring.go

package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/trust"
)

// ScoringEnvPrefix scopes scoring overrides. Nested keys use a double
// underscore: SCORING_MATCH_WEIGHTS__LOCATION=0.3.
const ScoringEnvPrefix = "SCORING_"

// Scoring holds the tunable weights and thresholds of the scoring engines.
type Scoring struct {
	MatchWeights         matching.Weights              `koanf:"match_weights"`
	SafetyWeights        matching.SafetyWeights        `koanf:"safety_weights"`
	CompatibilityWeights matching.CompatibilityWeights `koanf:"compatibility_weights"`
	TrustWeights         trust.Weights                 `koanf:"trust_weights"`
	MinMatchScore        float64                       `koanf:"min_match_score"`
	ExperienceMargin     float64                       `koanf:"experience_margin"`
}

func DefaultScoring() Scoring {
	return Scoring{
		MatchWeights:         matching.DefaultWeights(),
		SafetyWeights:        matching.DefaultSafetyWeights(),
		CompatibilityWeights: matching.DefaultCompatibilityWeights(),
		TrustWeights:         trust.DefaultWeights(),
		MinMatchScore:        matching.DefaultMinScore,
		ExperienceMargin:     matching.DefaultExperienceMargin,
	}
}

// LoadScoring layers defaults, the optional YAML file at path and
// SCORING_ environment variables, then validates the result.
func LoadScoring(path string) (*Scoring, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load scoring file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(ScoringEnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, ScoringEnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load scoring env: %w", err)
	}

	cfg := DefaultScoring()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode scoring config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Scoring) Validate() error {
	if err := s.MatchWeights.Validate(); err != nil {
		return err
	}
	if err := s.SafetyWeights.Validate(); err != nil {
		return err
	}
	if err := s.CompatibilityWeights.Validate(); err != nil {
		return err
	}
	if err := s.TrustWeights.Validate(); err != nil {
		return err
	}
	if s.MinMatchScore < 0 || s.MinMatchScore >= 1 {
		return matching.Invalidf("min match score %v must be in [0, 1)", s.MinMatchScore)
	}
	if s.ExperienceMargin <= 0 {
		return matching.Invalidf("experience margin must be positive")
	}
	return nil
}

// MatchOptions configures a matching.Engine with the loaded calculators.
func (s *Scoring) MatchOptions() []matching.Option {
	return []matching.Option{
		matching.WithMinScore(s.MinMatchScore),
		matching.WithDimension(matching.ExperienceScore{Margin: s.ExperienceMargin}),
		matching.WithDimension(matching.SafetyScore{Weights: s.SafetyWeights}),
		matching.WithDimension(matching.CompatibilityScore{Weights: s.CompatibilityWeights}),
	}
}
