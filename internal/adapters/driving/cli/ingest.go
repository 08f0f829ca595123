package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tala-knowledge/internal/connectors/filesystem"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

var (
	ingestOwner  string
	ingestAdmin  bool
	ingestFolder string
	ingestType   string
	ingestWatch  bool
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Upload documents into the knowledge base",
	Long: `Extracts text from each file, splits it into overlapping word windows,
embeds every chunk and stores it in the requester's collection.

Directories are walked recursively; hidden files are skipped and files of an
unsupported type are reported but do not stop the run. With --watch the
command keeps running and ingests files created or rewritten under the
given directories.

Examples:
  tala ingest visa_rules.pdf --admin
  tala ingest ./itineraries --owner agent-42 --folder europe
  tala ingest ./inbox --owner agent-42 --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	requesterFlags(ingestCmd, &ingestOwner, &ingestAdmin)
	ingestCmd.Flags().StringVar(&ingestFolder, "folder", "", "folder ID to tag documents with")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "media type (default: inferred from the file extension)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching directories for new files")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestSummary counts outcomes across a run.
type ingestSummary struct {
	Results []domain.IngestResult `json:"results"`
	Skipped []string              `json:"skipped,omitempty"`
	Failed  []string              `json:"failed,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if !ingestAdmin && ingestOwner == "" {
		return errors.New("either --owner or --admin is required")
	}

	ctx := cmd.Context()
	var summary ingestSummary
	var watchDirs []string

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			ingestFile(cmd, filesystem.File{Path: path, Name: filepath.Base(path), Content: content}, &summary)
			continue
		}

		conn := filesystem.New(path, services.Config.Ingestion.MaxUploadBytes)
		files, errs := conn.Scan(ctx)
		for f := range files {
			ingestFile(cmd, f, &summary)
		}
		for err := range errs {
			return fmt.Errorf("scan %s: %w", path, err)
		}
		watchDirs = append(watchDirs, path)
	}

	if ingestJSON {
		if err := printJSON(cmd, summary); err != nil {
			return err
		}
	} else {
		cmd.Printf("Ingested %d, skipped %d, failed %d\n",
			len(summary.Results), len(summary.Skipped), len(summary.Failed))
	}

	if ingestWatch {
		if len(watchDirs) == 0 {
			return errors.New("--watch needs at least one directory")
		}
		return watchDirectories(ctx, cmd, watchDirs)
	}

	if len(summary.Failed) > 0 && len(summary.Results) == 0 {
		return fmt.Errorf("%d documents failed to ingest", len(summary.Failed))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, f filesystem.File, summary *ingestSummary) {
	result, err := services.Ingestion.Ingest(cmd.Context(), domain.IngestRequest{
		Content:   f.Content,
		MediaType: ingestType,
		Filename:  f.Name,
		OwnerID:   ingestOwner,
		IsAdmin:   ingestAdmin,
		FolderID:  ingestFolder,
	})

	switch {
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		summary.Skipped = append(summary.Skipped, f.Path)
		logger.Debug("skipped %s: %v", f.Path, err)
		if !ingestJSON {
			cmd.Printf("  skip %s (%v)\n", f.Path, err)
		}
	case err != nil:
		summary.Failed = append(summary.Failed, f.Path)
		logger.Warn("ingest %s: %v", f.Path, err)
		if !ingestJSON {
			cmd.Printf("  fail %s (%v)\n", f.Path, err)
		}
	default:
		summary.Results = append(summary.Results, *result)
		if !ingestJSON {
			cmd.Printf("  ok   %s -> %s (%d chunks, %s)\n",
				f.Path, result.DocumentID, result.ChunksStored, result.CollectionName)
		}
	}
}

func watchDirectories(ctx context.Context, cmd *cobra.Command, dirs []string) error {
	maxBytes := services.Config.Ingestion.MaxUploadBytes

	merged := make(chan filesystem.Change)
	active := 0
	for _, dir := range dirs {
		changes, err := filesystem.New(dir, maxBytes).Watch(ctx)
		if err != nil {
			return err
		}
		active++
		go func() {
			for c := range changes {
				select {
				case merged <- c:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	cmd.Printf("Watching %d directories, press Ctrl+C to stop\n", active)

	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-merged:
			var summary ingestSummary
			logger.Info("%s %s", change.Type, change.File.Path)
			ingestFile(cmd, change.File, &summary)
		}
	}
}
