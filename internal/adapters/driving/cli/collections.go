package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	collectionsOwner string
	collectionsAdmin bool
	collectionsJSON  bool
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Inspect and provision vector collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections in the vector store",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the requester's collection and payload indexes",
	Long: `Resolves the requester's collection name and creates it with cosine
distance and the payload indexes used by search filters. Existing
collections are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runCollectionsEnsure,
}

func init() {
	collectionsListCmd.Flags().BoolVar(&collectionsJSON, "json", false, "output as JSON")
	requesterFlags(collectionsEnsureCmd, &collectionsOwner, &collectionsAdmin)

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsEnsureCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	infos, err := services.Collection.ListCollections(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if collectionsJSON {
		return printJSON(cmd, infos)
	}

	if len(infos) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, info := range infos {
		cmd.Printf("  %-40s %8d points", info.Name, info.PointsCount)
		if info.VectorSize > 0 {
			cmd.Printf("  dim %d", info.VectorSize)
		}
		if info.Status != "" {
			cmd.Printf("  %s", info.Status)
		}
		cmd.Println()
	}
	return nil
}

func runCollectionsEnsure(cmd *cobra.Command, _ []string) error {
	name := services.Collection.ResolveCollectionName(collectionsOwner, collectionsAdmin)

	failed, err := services.Collection.EnsureCollection(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", name, err)
	}

	cmd.Printf("Collection %s is ready\n", name)
	if len(failed) > 0 {
		cmd.Printf("Warning: payload index creation failed for %s\n", strings.Join(failed, ", "))
	}
	return nil
}
