package matching

import (
	"fmt"
	"math"
)

// WeightTolerance is the allowed drift of a weight set's sum from 1.0.
const WeightTolerance = 1e-9

type Dimension string

const (
	DimensionLocation      Dimension = "location"
	DimensionAvailability  Dimension = "availability"
	DimensionExperience    Dimension = "experience"
	DimensionRating        Dimension = "rating"
	DimensionPrice         Dimension = "price"
	DimensionSafety        Dimension = "safety"
	DimensionCompatibility Dimension = "compatibility"
)

// Dimensions lists every scored dimension in breakdown order.
var Dimensions = []Dimension{
	DimensionLocation,
	DimensionAvailability,
	DimensionExperience,
	DimensionRating,
	DimensionPrice,
	DimensionSafety,
	DimensionCompatibility,
}

// Weights combines per-dimension scores into the overall match score.
type Weights struct {
	Location      float64 `json:"location" koanf:"location"`
	Availability  float64 `json:"availability" koanf:"availability"`
	Experience    float64 `json:"experience" koanf:"experience"`
	Rating        float64 `json:"rating" koanf:"rating"`
	Price         float64 `json:"price" koanf:"price"`
	Safety        float64 `json:"safety" koanf:"safety"`
	Compatibility float64 `json:"compatibility" koanf:"compatibility"`
}

func DefaultWeights() Weights {
	return Weights{
		Location:      0.20,
		Availability:  0.25,
		Experience:    0.15,
		Rating:        0.15,
		Price:         0.10,
		Safety:        0.10,
		Compatibility: 0.05,
	}
}

func (w Weights) For(d Dimension) float64 {
	switch d {
	case DimensionLocation:
		return w.Location
	case DimensionAvailability:
		return w.Availability
	case DimensionExperience:
		return w.Experience
	case DimensionRating:
		return w.Rating
	case DimensionPrice:
		return w.Price
	case DimensionSafety:
		return w.Safety
	case DimensionCompatibility:
		return w.Compatibility
	}
	return 0
}

func (w Weights) Sum() float64 {
	var sum float64
	for _, d := range Dimensions {
		sum += w.For(d)
	}
	return sum
}

func (w Weights) Validate() error {
	for _, d := range Dimensions {
		if w.For(d) < 0 {
			return fmt.Errorf("%w: weight for %s is negative", ErrInvalidInput, d)
		}
	}
	return CheckWeightSum("match", w.Sum())
}

// CheckWeightSum enforces that a weight set sums to 1.0.
func CheckWeightSum(name string, sum float64) error {
	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("%w: %s weights sum to %.12f, want 1.0", ErrInvalidInput, name, sum)
	}
	return nil
}

// SafetyWeights split the safety sub-score across verification signals.
type SafetyWeights struct {
	BackgroundCheck float64 `json:"background_check" koanf:"background_check"`
	Email           float64 `json:"email" koanf:"email"`
	Phone           float64 `json:"phone" koanf:"phone"`
	Certifications  float64 `json:"certifications" koanf:"certifications"`
}

func DefaultSafetyWeights() SafetyWeights {
	return SafetyWeights{
		BackgroundCheck: 0.40,
		Email:           0.10,
		Phone:           0.15,
		Certifications:  0.35,
	}
}

func (w SafetyWeights) Validate() error {
	if w.BackgroundCheck < 0 || w.Email < 0 || w.Phone < 0 || w.Certifications < 0 {
		return fmt.Errorf("%w: safety weights must not be negative", ErrInvalidInput)
	}
	return CheckWeightSum("safety", w.BackgroundCheck+w.Email+w.Phone+w.Certifications)
}
