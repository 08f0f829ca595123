package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the knowledge base over HTTP: document upload, search, collection
and folder management. Stops gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.http_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serveAddr
	if addr == "" {
		addr = services.Config.Server.HTTPAddr
	}

	server, err := api.NewServer(&api.Ports{
		Ingestion:  services.Ingestion,
		Retrieval:  services.Retrieval,
		Collection: services.Collection,
		Folder:     services.Folder,
		Extractor:  services.Extractor,
	}, api.Options{
		MaxUploadBytes: services.Config.Ingestion.MaxUploadBytes,
		CORSOrigin:     services.Config.Server.CORSOrigin,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Tala API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
