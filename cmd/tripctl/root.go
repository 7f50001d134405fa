package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	dataPath string
	asJSON   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "tripctl",
		Short:         "Correlate meetings with trips from a JSON dataset",
		Long:          "tripctl loads contacts, meetings and trips from a JSON file and runs location normalization, clustering, suggestion ranking and relevance scoring without a server or database.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dataPath, "data", "tripmatch.json", "Path to the JSON dataset")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Render JSON output")

	rootCmd.AddCommand(
		newNormalizeCmd(opts),
		newClustersCmd(opts),
		newSuggestCmd(opts),
		newScoreCmd(opts),
	)
	return rootCmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
