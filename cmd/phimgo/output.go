package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func taxonNames(ts []Taxon) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func printMovieTable(w io.Writer, movies []MovieResponse) {
	fmt.Fprintf(w, "  %-36s %-40s %-8s %-6s %s\n", "SLUG", "NAME", "TYPE", "YEAR", "VIEWS")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 100))
	for i := range movies {
		m := &movies[i]
		fmt.Fprintf(w, "  %-36s %-40s %-8s %-6d %d\n",
			truncate(m.Slug, 36),
			truncate(m.Name, 40),
			m.Type,
			m.Year,
			m.View)
	}
}

func printPage(w io.Writer, p *PageResponse) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No movies found.")
		return
	}
	fmt.Fprintf(w, "Page %d of %d (%d movies):\n\n", p.Page, p.TotalPages, p.Total)
	printMovieTable(w, p.Items)
	if p.NextCursor != nil {
		fmt.Fprintf(w, "\n  Next page: --cursor %s --page %d\n", *p.NextCursor, p.Page+1)
	}
}

func printMovie(w io.Writer, m *MovieResponse) {
	fmt.Fprintf(w, "%s (%d)\n", m.Name, m.Year)
	if m.OriginName != "" {
		fmt.Fprintf(w, "  Original:   %s\n", m.OriginName)
	}
	fmt.Fprintf(w, "  ID:         %s\n", m.ID)
	fmt.Fprintf(w, "  Slug:       %s\n", m.Slug)
	fmt.Fprintf(w, "  Type:       %s\n", m.Type)
	if m.Lang != "" {
		fmt.Fprintf(w, "  Language:   %s\n", m.Lang)
	}
	if m.EpisodeCurrent != "" {
		fmt.Fprintf(w, "  Episodes:   %s / %d\n", m.EpisodeCurrent, m.EpisodeTotal)
	}
	fmt.Fprintf(w, "  Categories: %s\n", taxonNames(m.Categories))
	fmt.Fprintf(w, "  Countries:  %s\n", taxonNames(m.Countries))
	fmt.Fprintf(w, "  Views:      %d\n", m.View)
	if m.Rating > 0 {
		fmt.Fprintf(w, "  Rating:     %.1f\n", m.Rating)
	}
}
