// Package cli implements matchctl, which runs the scoring engines over a
// JSON fixture without a database.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/sitter-backend/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

// options are the persistent flags shared by every subcommand.
type options struct {
	fixturePath string
	scoringPath string
	outputFmt   string
	nowFlag     string
}

func (o *options) clock() (func() time.Time, error) {
	if o.nowFlag == "" {
		return time.Now, nil
	}
	at, err := time.Parse(time.RFC3339, o.nowFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --now: %w", err)
	}
	return func() time.Time { return at }, nil
}

func (o *options) scoring() (*config.Scoring, error) {
	return config.LoadScoring(o.scoringPath)
}

func (o *options) fixture() (*Fixture, error) {
	if o.fixturePath == "" {
		return nil, fmt.Errorf("--fixture is required")
	}
	return LoadFixture(o.fixturePath)
}

// NewRootCmd builds the matchctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "matchctl",
		Short: "Run the sitter scoring engines over a JSON fixture",
		Long: `matchctl loads sitters, bookings and reviews from a JSON fixture and
runs the same engines the API uses.

Examples:
  matchctl match -f internal/cli/testdata/fixture.json
  matchctl trust 7 -f internal/cli/testdata/fixture.json -o json
  matchctl recommend --parent 1 --days 30 -f internal/cli/testdata/fixture.json`,
		SilenceUsage: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.PersistentFlags().StringVarP(&opts.fixturePath, "fixture", "f", "", "fixture file (JSON)")
	cmd.PersistentFlags().StringVar(&opts.scoringPath, "scoring", "", "scoring config file (YAML)")
	cmd.PersistentFlags().StringVarP(&opts.outputFmt, "output", "o", "table", "output format (table, json)")
	cmd.PersistentFlags().StringVar(&opts.nowFlag, "now", "", "evaluate as of this RFC3339 time")

	cmd.AddCommand(
		matchCmd(opts),
		trustCmd(opts),
		priceCmd(opts),
		behaviorCmd(opts),
		recommendCmd(opts),
		tokenCmd(),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "matchctl %s (%s)\n", version, commit)
		},
	}
}
