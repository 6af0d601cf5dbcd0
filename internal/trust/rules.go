package trust

// Rule is one improvement suggestion keyed on a single trust factor.
type Rule struct {
	Name    string
	Applies func(Factors) bool
	Message string
}

const (
	minResponseRate     = 0.8
	maxCancellationRate = 0.1
	minRatingFactor     = 0.8
	minCompletionRate   = 0.9
)

func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "background_check",
			Applies: func(f Factors) bool { return f.BackgroundCheck < 1 },
			Message: "Complete a background check to earn parents' trust",
		},
		{
			Name:    "response_rate",
			Applies: func(f Factors) bool { return f.ResponseRate < minResponseRate },
			Message: "Respond to booking requests faster",
		},
		{
			Name:    "cancellations",
			Applies: func(f Factors) bool { return f.Bookings > 0 && f.CancellationRate > maxCancellationRate },
			Message: "Reduce cancellations to improve reliability",
		},
		{
			Name:    "rating",
			Applies: func(f Factors) bool { return f.Rating < minRatingFactor },
			Message: "Focus on service quality to raise your rating",
		},
		{
			Name:    "completion",
			Applies: func(f Factors) bool { return f.Bookings > 0 && f.CompletionRate < minCompletionRate },
			Message: "Complete more of your confirmed bookings",
		},
		{
			Name:    "verification",
			Applies: func(f Factors) bool { return f.VerificationLevel < 1 },
			Message: "Verify your email and phone number",
		},
	}
}

// RuleByName returns the default rule with the given name.
func RuleByName(name string) (Rule, bool) {
	for _, r := range DefaultRules() {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}
