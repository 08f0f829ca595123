package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

var (
	searchOwner     string
	searchAdmin     bool
	searchLimit     int
	searchThreshold float64
	searchFolder    string
	searchCategory  string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the travel knowledge base",
	Long: `Embeds the query and searches the agent's personal collection together
with the shared admin knowledge base. Results from both are merged by score.

Examples:
  tala search "Schengen visa requirements" --owner agent-42
  tala search "carry-on baggage" --category airline --limit 3 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	requesterFlags(searchCmd, &searchOwner, &searchAdmin)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", domain.DefaultScoreThreshold, "minimum similarity score")
	searchCmd.Flags().StringVar(&searchFolder, "folder", domain.FilterAll, "restrict to one folder")
	searchCmd.Flags().StringVar(&searchCategory, "category", domain.FilterAll, "restrict to one category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	opts := domain.SearchOptions{
		OwnerID:  searchOwner,
		IsAdmin:  searchAdmin,
		Limit:    searchLimit,
		FolderID: searchFolder,
		Category: searchCategory,
	}
	if cmd.Flags().Changed("threshold") {
		opts.ScoreThreshold = domain.Float64(searchThreshold)
	}

	resp, err := services.Retrieval.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, resp)
	}

	outputSearchTable(cmd, resp)
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) {
	if resp == nil || len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("%d results from %s (%dms)\n\n",
		resp.Total, strings.Join(resp.CollectionsSearched, ", "), resp.Elapsed.Milliseconds())

	for i := range resp.Results {
		r := &resp.Results[i]
		title := r.Metadata.Title
		if title == "" {
			title = r.DocumentID
		}

		cmd.Printf("  [%d] %s [%s] (%.2f)\n", i+1, title, r.Source, r.Score)
		cmd.Printf("      Category: %s  Document: %s\n", r.Metadata.Category, r.DocumentID)

		snippet := r.Content
		if len(r.Highlights) > 0 {
			snippet = r.Highlights[0]
		}
		if snippet != "" {
			cmd.Printf("      %s\n", excerpt(snippet, 200))
		}
		cmd.Println()
	}
}

// excerpt collapses whitespace and cuts s to limit runes.
func excerpt(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
