package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "Search and manage catalog movies",
}

var moviesSearchCmd = &cobra.Command{
	Use:   "search [flags] [name]...",
	Short: "Search the catalog",
	Long: `Search the catalog by name prefix and filters.

Multi-valued filters are comma-separated. Category and country
accept slugs or display names.

Examples:
  phimgo movies search "Đảo Hải"
  phimgo movies search --category hanh-dong,hai-huoc --year 2024,2023
  phimgo movies search --year older --sort view`,
	RunE: runMoviesSearch,
}

var moviesGetCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Show a movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runMoviesGet,
}

var moviesEpisodesCmd = &cobra.Command{
	Use:   "episodes <slug>",
	Short: "List a movie's episodes from the upstream source",
	Args:  cobra.ExactArgs(1),
	RunE:  runMoviesEpisodes,
}

var moviesImportCmd = &cobra.Command{
	Use:   "import <slug>...",
	Short: "Import movies from the upstream source",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMoviesImport,
}

var moviesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a movie from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runMoviesDelete,
}

var moviesReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the derived search fields of every movie",
	Args:  cobra.NoArgs,
	RunE:  runMoviesReindex,
}

func init() {
	f := moviesSearchCmd.Flags()
	f.String("type", "", "Movie types (single, series, hoathinh, tvshows)")
	f.String("lang", "", "Languages (Vietsub, Thuyết Minh, Lồng Tiếng)")
	f.String("year", "", "Years, or 'older' for 2020 and before")
	f.String("category", "", "Categories")
	f.String("country", "", "Countries")
	f.String("sort", "", "Sort key (newest, updated, year, view, rating, name)")
	f.IntP("limit", "l", 0, "Page size (server default when 0)")
	f.String("cursor", "", "Cursor from a previous page")
	f.Int("page", 0, "Page number the cursor leads to")

	moviesCmd.AddCommand(moviesSearchCmd, moviesGetCmd, moviesEpisodesCmd, moviesImportCmd, moviesDeleteCmd, moviesReindexCmd)
	rootCmd.AddCommand(moviesCmd)
}

func searchParams(cmd *cobra.Command, args []string) SearchParams {
	f := cmd.Flags()
	p := SearchParams{Query: strings.Join(args, " ")}
	p.Type, _ = f.GetString("type")
	p.Lang, _ = f.GetString("lang")
	p.Year, _ = f.GetString("year")
	p.Category, _ = f.GetString("category")
	p.Country, _ = f.GetString("country")
	p.Sort, _ = f.GetString("sort")
	p.PageSize, _ = f.GetInt("limit")
	p.Cursor, _ = f.GetString("cursor")
	p.Page, _ = f.GetInt("page")
	return p
}

func runMoviesSearch(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	page, err := client.Search(searchParams(cmd, args))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), page)
	}
	printPage(cmd.OutOrStdout(), page)
	return nil
}

func runMoviesGet(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	m, err := client.Movie(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), m)
	}
	printMovie(cmd.OutOrStdout(), m)
	return nil
}

func runMoviesEpisodes(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	eps, err := client.Episodes(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, eps)
	}
	if len(eps) == 0 {
		fmt.Fprintln(out, "No episodes published.")
		return nil
	}
	for _, e := range eps {
		link := e.LinkM3U8
		if link == "" {
			link = e.LinkEmbed
		}
		fmt.Fprintf(out, "  %-10s %s\n", e.Name, link)
	}
	return nil
}

func runMoviesImport(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	out := cmd.OutOrStdout()

	var failed int
	for _, slug := range args {
		m, err := client.Import(slug)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: %v\n", slug, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "  ✓ %s (%d) imported as %s\n", m.Name, m.Year, m.ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(args))
	}
	return nil
}

func runMoviesDelete(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL, userID)
	if err := client.DeleteMovie(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runMoviesReindex(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL, userID)
	resp, err := client.Reindex()
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %d movies (%d were missing search fields)\n", resp.Reindexed, resp.MissingBefore)
	return nil
}
