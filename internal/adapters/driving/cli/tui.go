package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface for searching the knowledge base
and browsing uploaded documents.

Controls:
  ↑/k, ↓/j - Navigate results
  Tab      - Cycle category filter
  Enter    - Search / Select
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var (
	tuiOwner string
	tuiAdmin bool
)

func init() {
	requesterFlags(tuiCmd, &tuiOwner, &tuiAdmin)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panicked: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Retrieval: services.Retrieval,
		Ingestion: services.Ingestion,
	}, tui.Requester{OwnerID: tuiOwner, IsAdmin: tuiAdmin})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	return app.WithContext(cmd.Context()).Run()
}
