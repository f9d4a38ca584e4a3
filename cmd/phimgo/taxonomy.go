package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newTaxonomyCmd("categories", "category"))
	rootCmd.AddCommand(newTaxonomyCmd("countries", "country"))
}

func newTaxonomyCmd(kind, singular string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind,
		Short: "List or add " + kind,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(serverURL, userID)
			items, err := client.Taxa(kind)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), items)
			}
			printTaxa(cmd, kind, items)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name>...",
		Short: "Add a " + singular + " by display name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(serverURL, userID)
			t, err := client.AddTaxon(kind, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", t.Name, t.Slug)
			return nil
		},
	}
	cmd.AddCommand(add)
	return cmd
}

func printTaxa(cmd *cobra.Command, kind string, items []TaxonResponse) {
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(out, "No %s.\n", kind)
		return
	}
	fmt.Fprintf(out, "  %-30s %-30s %s\n", "SLUG", "NAME", "VIEWS")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, t := range items {
		fmt.Fprintf(out, "  %-30s %-30s %d\n", truncate(t.Slug, 30), truncate(t.Name, 30), t.TotalViews)
	}
}
