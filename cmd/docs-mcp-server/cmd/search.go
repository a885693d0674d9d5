package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Coder-RL/docs-mcp-server/internal/domain"
	searchuc "github.com/Coder-RL/docs-mcp-server/internal/usecase/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	version string
	limit   int
	exact   bool
	format  string // "text", "json"
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <library> <query>",
		Short: "Search the documentation of one library",
		Long: `Search indexed documentation of a library.

The version may be exact ("18.2.0"), a range ("18.x", "~1.2", "^3") or
"latest". Without --exact the best indexed match is used, falling back
to unversioned docs when nothing matches.

Examples:
  docs-mcp-server search react "useEffect cleanup" --version 18.x
  docs-mcp-server search lodash debounce --exact --version ""
  docs-mcp-server search vue "computed refs" --format json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.search.Search(cmd.Context(), searchuc.Request{
				Library:    args[0],
				Version:    opts.version,
				Query:      strings.Join(args[1:], " "),
				Limit:      opts.limit,
				ExactMatch: opts.exact,
			})
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out, opts.format)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", domain.LatestVersion, "Version or range to search")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", searchuc.DefaultLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.exact, "exact", false, "Search the given version verbatim, without resolution")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

type jsonResult struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title,omitempty"`
	URL     string  `json:"url,omitempty"`
	Version string  `json:"version"`
	Content string  `json:"content"`
}

type jsonOutcome struct {
	Results []jsonResult           `json:"results"`
	Error   *searchuc.OutcomeError `json:"error,omitempty"`
}

func printOutcome(w io.Writer, out searchuc.Outcome, format string) error {
	switch format {
	case "json":
		items := make([]jsonResult, len(out.Results))
		for i := range out.Results {
			r := &out.Results[i]
			items[i] = jsonResult{
				ID: r.ID(), Score: r.Score(), Title: r.Title(),
				URL: r.URL(), Version: r.Version(), Content: r.Content(),
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonOutcome{Results: items, Error: out.Error})
	case "text":
		return printText(w, out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printText(w io.Writer, out searchuc.Outcome) error {
	if out.Error != nil {
		fmt.Fprintln(w, out.Error.Message)
		for _, v := range out.Error.AvailableVersions {
			state := "indexed"
			if !v.Indexed {
				state = "not indexed"
			}
			fmt.Fprintf(w, "  %s (%s)\n", v.Version, state)
		}
		return nil
	}
	if len(out.Results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for i := range out.Results {
		r := &out.Results[i]
		version := r.Version()
		if version == "" {
			version = "unversioned"
		}
		fmt.Fprintf(w, "%d. %s [%s] score=%.3f\n", i+1, r.Title(), version, r.Score())
		if r.URL() != "" {
			fmt.Fprintf(w, "   %s\n", r.URL())
		}
		fmt.Fprintf(w, "   %s\n\n", snippet(r.Content(), 240))
	}
	return nil
}

// snippet collapses whitespace and truncates to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
