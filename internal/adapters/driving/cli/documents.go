package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	documentsOwner string
	documentsAdmin bool
	documentsJSON  bool
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage uploaded documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents visible to the requester",
	Long: `Lists the documents the requester uploaded. Admins see the documents in
the shared admin knowledge base.`,
	Args: cobra.NoArgs,
	RunE: runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show a document's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document and all of its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	requesterFlags(documentsListCmd, &documentsOwner, &documentsAdmin)
	documentsListCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	documentsShowCmd.Flags().BoolVar(&documentsJSON, "json", false, "output as JSON")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	docs, err := services.Ingestion.ListDocuments(cmd.Context(), documentsOwner, documentsAdmin)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Printf("Documents (%d):\n\n", len(docs))
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s  %s\n", d.ID, d.OriginalName)
		cmd.Printf("      Category: %s  Chunks: %d  Collection: %s  Uploaded: %s\n",
			d.Category, d.ChunkCount, d.CollectionName, d.UploadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	doc, err := services.Ingestion.GetDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentsJSON {
		return printJSON(cmd, doc)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	cmd.Printf("  File:       %s (%s, %d bytes)\n", doc.OriginalName, doc.MediaType, doc.ByteSize)
	cmd.Printf("  Title:      %s\n", doc.Title)
	cmd.Printf("  Category:   %s\n", doc.Category)
	cmd.Printf("  Owner:      %s\n", doc.OwnerID)
	cmd.Printf("  Admin:      %t\n", doc.IsAdmin)
	if doc.FolderID != "" {
		cmd.Printf("  Folder:     %s\n", doc.FolderID)
	}
	cmd.Printf("  Collection: %s\n", doc.CollectionName)
	cmd.Printf("  Chunks:     %d\n", doc.ChunkCount)
	cmd.Printf("  Uploaded:   %s\n", doc.UploadedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if err := services.Ingestion.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
