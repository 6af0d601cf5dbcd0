package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/sitter-backend/internal/marketplace"
	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

func matchCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank the fixture's sitters against its match request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := opts.fixture()
			if err != nil {
				return err
			}
			if fixture.Request == nil {
				return fmt.Errorf("fixture has no request")
			}
			scoring, err := opts.scoring()
			if err != nil {
				return err
			}
			engine, err := matching.NewEngine(scoring.MatchWeights, scoring.MatchOptions()...)
			if err != nil {
				return err
			}

			results, err := engine.FindBestMatches(fixture.Request, fixture.Candidates, limit)
			if err != nil {
				return err
			}

			header := []string{"Rank", "Sitter", "Name", "Score", "Match %", "Distance km", "Warnings"}
			return render(cmd.OutOrStdout(), opts.outputFmt, results, header, func() [][]string {
				rows := make([][]string, 0, len(results))
				for i, r := range results {
					distance := "-"
					if r.DistanceKm != nil {
						distance = strconv.FormatFloat(*r.DistanceKm, 'f', 1, 64)
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						strconv.FormatInt(r.CandidateID, 10),
						r.Candidate.Name,
						score(r.OverallScore),
						strconv.FormatFloat(marketplace.Percentage(r.OverallScore), 'f', 1, 64),
						distance,
						strconv.Itoa(len(r.Warnings)),
					})
				}
				return rows
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", matching.DefaultSearchLimit, "maximum number of matches")
	return cmd
}
