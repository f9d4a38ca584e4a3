package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL, userID)
	s, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), s)
	}
	printStatus(cmd.OutOrStdout(), serverURL, s)
	return nil
}

func printStatus(w io.Writer, server string, s *StatusResponse) {
	source := "not configured"
	if s.Source {
		source = "configured"
	}
	fmt.Fprintf(w, "Server:     %s (%s)\n", server, s.Status)
	fmt.Fprintf(w, "Version:    %s\n", s.Version)
	fmt.Fprintf(w, "Movies:     %d\n", s.Movies)
	if s.MissingDerived > 0 {
		fmt.Fprintf(w, "            %d need reindex (phimgo movies reindex)\n", s.MissingDerived)
	}
	fmt.Fprintf(w, "Views:      %d open\n", s.Views)
	fmt.Fprintf(w, "Source:     %s\n", source)
}
