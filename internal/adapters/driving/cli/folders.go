package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	foldersOwner       string
	foldersAdmin       bool
	foldersDescription string
	foldersJSON        bool
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage document folders",
	Long: `Folders group an agent's uploads. Documents are tagged with a folder ID at
upload time and searches can be restricted to one folder.`,
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders visible to the requester",
	Args:  cobra.NoArgs,
	RunE:  runFoldersList,
}

var foldersCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runFoldersCreate,
}

var foldersDeleteCmd = &cobra.Command{
	Use:   "delete <folder-id>",
	Short: "Delete a folder",
	Long:  `Deletes the folder record. Documents tagged with it keep the tag.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFoldersDelete,
}

func init() {
	for _, c := range []*cobra.Command{foldersListCmd, foldersCreateCmd, foldersDeleteCmd} {
		requesterFlags(c, &foldersOwner, &foldersAdmin)
	}
	foldersListCmd.Flags().BoolVar(&foldersJSON, "json", false, "output as JSON")
	foldersCreateCmd.Flags().StringVarP(&foldersDescription, "description", "d", "", "folder description")

	foldersCmd.AddCommand(foldersListCmd)
	foldersCmd.AddCommand(foldersCreateCmd)
	foldersCmd.AddCommand(foldersDeleteCmd)
	rootCmd.AddCommand(foldersCmd)
}

func runFoldersList(cmd *cobra.Command, _ []string) error {
	if services.Folder == nil {
		return errFoldersUnavailable
	}

	folders, err := services.Folder.GetFolders(cmd.Context(), foldersOwner, foldersAdmin)
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	if foldersJSON {
		return printJSON(cmd, folders)
	}

	if len(folders) == 0 {
		cmd.Println("No folders.")
		return nil
	}

	for _, f := range folders {
		scope := "personal"
		if f.IsAdmin {
			scope = "admin"
		}
		cmd.Printf("  %s  %s (%d documents, %s)\n", f.ID, f.Name, f.DocumentCount, scope)
		if f.Description != "" {
			cmd.Printf("      %s\n", f.Description)
		}
	}
	return nil
}

func runFoldersCreate(cmd *cobra.Command, args []string) error {
	if services.Folder == nil {
		return errFoldersUnavailable
	}

	folder, err := services.Folder.CreateFolder(cmd.Context(), args[0], foldersDescription, foldersOwner, foldersAdmin)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	cmd.Printf("Created folder %s (%s)\n", folder.Name, folder.ID)
	return nil
}

func runFoldersDelete(cmd *cobra.Command, args []string) error {
	if services.Folder == nil {
		return errFoldersUnavailable
	}

	if err := services.Folder.DeleteFolder(cmd.Context(), args[0], foldersOwner, foldersAdmin); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	cmd.Printf("Deleted folder %s\n", args[0])
	return nil
}
