package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long: `Show the latest statistics snapshot.

With --live, computes the distribution now instead of reading the
last scheduled snapshot.`,
	Args: cobra.NoArgs,
	RunE: runStatsCmd,
}

func init() {
	statsCmd.Flags().Bool("live", false, "Compute the distribution now")
	rootCmd.AddCommand(statsCmd)
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL, userID)
	out := cmd.OutOrStdout()
	live, _ := cmd.Flags().GetBool("live")

	if live {
		d, err := client.Distribution()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, d)
		}
		printDistribution(out, d)
		return nil
	}

	s, err := client.Stats()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, s)
	}
	fmt.Fprintf(out, "Snapshot taken %s\n", s.TakenAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  Movies: %d\n", s.TotalMovies)
	fmt.Fprintf(out, "  Views:  %d\n\n", s.TotalViews)
	printDistribution(out, &s.Distribution)
	return nil
}

func printDistribution(w io.Writer, d *DistributionResponse) {
	fmt.Fprintln(w, "By year:")
	for _, y := range d.ByYear {
		fmt.Fprintf(w, "  %-6d %d\n", y.Year, y.Count)
	}
	fmt.Fprintln(w, "By category:")
	for _, c := range d.ByCategory {
		fmt.Fprintf(w, "  %-30s %d\n", c.Name, c.Count)
	}
	fmt.Fprintln(w, "By language:")
	for _, l := range d.ByLang {
		fmt.Fprintf(w, "  %-30s %d\n", l.Name, l.Count)
	}
}
