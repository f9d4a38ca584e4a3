package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errNoUser = errors.New("no user: pass --user or set PHIMGO_USER")

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Manage your favorites, saved and watched lists",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if userID == "" {
			return errNoUser
		}
		return nil
	},
}

var lists = []string{"favorites", "saved", "watched"}

func init() {
	for _, list := range lists {
		meCmd.AddCommand(newListCmd(list))
	}
	rootCmd.AddCommand(meCmd)
}

func newListCmd(list string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   list,
		Short: "Show your " + list,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(serverURL, userID)
			entries, err := client.ListEntries(list)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "Your %s list is empty.\n", list)
				return nil
			}
			fmt.Fprintf(out, "  %-36s %-40s %s\n", "ENTRY", "MOVIE", "EPISODE")
			fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
			for _, e := range entries {
				fmt.Fprintf(out, "  %-36s %-40s %s\n", e.ID, truncate(e.Movie.Name, 40), e.Episode)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <movie-id>",
		Short: "Add a movie to " + list,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			episode, _ := cmd.Flags().GetString("episode")
			client := NewClient(serverURL, userID)
			e, err := client.AddEntry(list, args[0], episode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (entry %s)\n", e.Movie.Name, list, e.ID)
			return nil
		},
	}
	add.Flags().String("episode", "", "Episode slug")

	remove := &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove an entry from " + list,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(serverURL, userID)
			if err := client.RemoveEntry(list, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[0], list)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
