package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Validate and print the bucket layout",
	Long: `Validate the configured bucket layout (or the --bucket flags) and print
the score range each bucket covers`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, set, err := resolveScoring(cmd)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Name", "Kind", "Scores"})
		for i, s := range set.Specs() {
			t.AppendRow(table.Row{i, s.DisplayName(), s.Kind, s.Canonical()})
		}
		t.Render()

		if set.Bounded() {
			fmt.Println("No overflow bucket: larger scores will be excluded from counts.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
	addScoringFlags(bucketsCmd)
}
