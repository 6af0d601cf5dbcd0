package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
)

func behaviorCmd(opts *options) *cobra.Command {
	var parentID int64

	cmd := &cobra.Command{
		Use:   "behavior",
		Short: "Derive a parent's booking behavior profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, history, err := opts.recommendationInputs(parentID)
			if err != nil {
				return err
			}
			profile := engine.AnalyzeUserBehavior(history)

			header := []string{"Attribute", "Value"}
			return render(cmd.OutOrStdout(), opts.outputFmt, profile, header, func() [][]string {
				days := make([]string, 0, len(profile.PreferredDays))
				for _, d := range profile.PreferredDays {
					days = append(days, d.String())
				}
				sitters := make([]string, 0, len(profile.PreferredSitters))
				for _, id := range profile.PreferredSitters {
					sitters = append(sitters, strconv.FormatInt(id, 10))
				}
				return [][]string{
					{"bookings_analyzed", strconv.Itoa(profile.BookingsAnalyzed)},
					{"cold_start", strconv.FormatBool(profile.ColdStart)},
					{"preferred_days", strings.Join(days, ", ")},
					{"preferred_time_of_day", string(profile.PreferredTimeOfDay)},
					{"average_duration", money(profile.AverageDuration)},
					{"frequency", string(profile.Frequency)},
					{"preferred_sitters", strings.Join(sitters, ", ")},
					{"budget", money(profile.Budget.Min) + " - " + money(profile.Budget.Max)},
					{"cancellation_rate", score(profile.CancellationRate)},
					{"rating_threshold", strconv.FormatFloat(profile.RatingThreshold, 'f', 1, 64)},
				}
			})
		},
	}

	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent id (0 uses every booking)")
	return cmd
}

func recommendCmd(opts *options) *cobra.Command {
	var (
		parentID int64
		days     int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest upcoming bookings for a parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, history, err := opts.recommendationInputs(parentID)
			if err != nil {
				return err
			}
			profile := engine.AnalyzeUserBehavior(history)
			recs := engine.GenerateRecommendations(profile, recommendations.Timeframe{Days: days})

			header := []string{"Kind", "Title", "Start", "Hours", "Confidence", "Priority"}
			return render(cmd.OutOrStdout(), opts.outputFmt, recs, header, func() [][]string {
				rows := make([][]string, 0, len(recs))
				for _, r := range recs {
					rows = append(rows, []string{
						string(r.Kind),
						r.Title,
						r.SuggestedStart.Format("Mon 2006-01-02 15:04"),
						money(r.DurationHours),
						strconv.FormatFloat(r.Confidence, 'f', 0, 64),
						strconv.FormatFloat(r.Priority, 'f', 1, 64),
					})
				}
				return rows
			})
		},
	}

	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent id (0 uses every booking)")
	cmd.Flags().IntVar(&days, "days", recommendations.DefaultHorizonDays, "look-ahead window in days")
	return cmd
}

func (o *options) recommendationInputs(parentID int64) (*recommendations.Engine, []matching.BookingRecord, error) {
	now, err := o.clock()
	if err != nil {
		return nil, nil, err
	}
	fixture, err := o.fixture()
	if err != nil {
		return nil, nil, err
	}
	return recommendations.NewEngine(recommendations.WithClock(now)), fixture.ParentBookings(parentID), nil
}
