package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripmatch/internal/correlate"
	"github.com/pkordes/tripmatch/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

func newNormalizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <location text>",
		Short: "Normalize free-text locations to city and country",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := correlate.Normalize(strings.Join(args, " "))
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), loc)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "city: %s\ncountry: %s\n", loc.City, loc.Country)
			return err
		},
	}
}

func newClustersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "Group meetings into candidate trip destinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts.dataPath)
			if err != nil {
				return err
			}
			clusters, err := a.correlation.Clusters(cmd.Context())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), clusters)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOCATION\tMEETINGS\tFROM\tTO")
			for _, c := range clusters {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Location, len(c.Meetings),
					c.DateRange.Start.Format(timeLayout), c.DateRange.End.Format(timeLayout))
			}
			return tw.Flush()
		},
	}
}

func newSuggestCmd(opts *options) *cobra.Command {
	var minLabel string

	cmd := &cobra.Command{
		Use:   "suggest <trip-id>",
		Short: "Rank meetings not yet linked to a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tripID, err := parseID("trip-id", args[0])
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context(), opts.dataPath)
			if err != nil {
				return err
			}
			suggestions, err := a.correlation.Suggest(cmd.Context(), tripID, domain.Label(minLabel))
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), suggestions)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tSCORE\tLABEL\tMEETING\tLOCATION\tSTART")
			for i, s := range suggestions {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", i+1, s.Score, s.Label,
					s.Meeting.Title, correlate.Normalize(s.Meeting.Location), s.Meeting.StartTime.Format(timeLayout))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&minLabel, "min-label", "", "Drop suggestions below this label (high, medium, low, minimal)")
	return cmd
}

func newScoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "score <meeting-id> <trip-id>",
		Short: "Explain how relevant a meeting is to a trip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := parseID("meeting-id", args[0])
			if err != nil {
				return err
			}
			tripID, err := parseID("trip-id", args[1])
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context(), opts.dataPath)
			if err != nil {
				return err
			}
			score, err := a.correlation.Score(cmd.Context(), meetingID, tripID)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), score)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "score:\t%d\nlabel:\t%s\n", score.Score, score.Label)
			for _, c := range score.Breakdown {
				fmt.Fprintf(tw, "  %s\t+%d\n", c.Rule, c.Points)
			}
			return tw.Flush()
		},
	}
}

func parseID(name, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return id, nil
}
