package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/pricing"
	"github.com/imadgeboyega/sitter-backend/internal/trust"
)

func parseSitterID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, matching.Invalidf("sitter id %q", arg)
	}
	return id, nil
}

func trustCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "trust <sitter-id>",
		Short: "Compute a sitter's trust score from the fixture history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSitterID(args[0])
			if err != nil {
				return err
			}
			fixture, err := opts.fixture()
			if err != nil {
				return err
			}
			candidate, err := fixture.Candidate(id)
			if err != nil {
				return err
			}
			scoring, err := opts.scoring()
			if err != nil {
				return err
			}
			engine, err := trust.NewEngine(scoring.TrustWeights)
			if err != nil {
				return err
			}

			ts, err := engine.Calculate(candidate, fixture.SitterBookings(id), fixture.SitterReviews(id))
			if err != nil {
				return err
			}

			header := []string{"Factor", "Value"}
			return render(cmd.OutOrStdout(), opts.outputFmt, ts, header, func() [][]string {
				f := ts.Factors
				rows := [][]string{
					{"overall", score(ts.Overall)},
					{"risk", string(ts.RiskLevel)},
					{"background_check", score(f.BackgroundCheck)},
					{"response_rate", score(f.ResponseRate)},
					{"reliability", score(f.Reliability())},
					{"rating", score(f.Rating)},
					{"completion_rate", score(f.CompletionRate)},
					{"verification_level", score(f.VerificationLevel)},
				}
				for _, msg := range ts.Recommendations {
					rows = append(rows, []string{"recommendation", msg})
				}
				return rows
			})
		},
	}
}

func priceCmd(opts *options) *cobra.Command {
	var (
		startFlag string
		lat, lng  float64
		demand    float64
	)

	cmd := &cobra.Command{
		Use:   "price <sitter-id>",
		Short: "Quote a sitter's dynamic hourly rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSitterID(args[0])
			if err != nil {
				return err
			}
			fixture, err := opts.fixture()
			if err != nil {
				return err
			}
			candidate, err := fixture.Candidate(id)
			if err != nil {
				return err
			}
			if demand <= 0 {
				return fmt.Errorf("--demand must be positive")
			}

			start, err := time.Parse(time.RFC3339, startFlag)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			engine := pricing.NewEngine(pricing.ConstantDemand(demand))
			quote, err := engine.Quote(candidate, matching.GeoPoint{Latitude: lat, Longitude: lng}, start)
			if err != nil {
				return err
			}

			header := []string{"Component", "Value"}
			return render(cmd.OutOrStdout(), opts.outputFmt, quote, header, func() [][]string {
				return [][]string{
					{"base_rate", money(quote.BaseRate)},
					{"demand_multiplier", money(quote.DemandMultiplier)},
					{"experience_bonus", money(quote.ExperienceBonus)},
					{"rating_bonus", money(quote.RatingBonus)},
					{"time_band", string(quote.TimeBand)},
					{"time_adjustment", money(quote.TimeAdjustment)},
					{"hourly_rate", money(quote.HourlyRate)},
				}
			})
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "booking start (RFC3339)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "booking latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "booking longitude")
	cmd.Flags().Float64Var(&demand, "demand", float64(pricing.BaselineDemand), "demand multiplier")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
