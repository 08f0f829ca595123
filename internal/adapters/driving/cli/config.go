package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsOnly = map[string]string{annotationSettingsOnly: "true"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Settings are read from ~/.tala/config.toml and overridden by TALA_*
environment variables (a .env file in the working directory is loaded first).`,
	Annotations: settingsOnly,
	RunE:        runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show stored settings",
	Args:        cobra.NoArgs,
	Annotations: settingsOnly,
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set one setting",
	Long: `Parses the value for the key's type and saves it to the config file.
When the value is omitted it is read from standard input; on a terminal the
input is not echoed, which keeps API keys out of shell history.`,
	Args:        cobra.RangeArgs(1, 2),
	Annotations: settingsOnly,
	RunE:        runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	for _, key := range settingsService.Keys() {
		value := settingsService.Display(key)
		if value == "" {
			value = "(default)"
		}
		cmd.Printf("  %-32s %s\n", key, value)
	}
	cmd.Println()

	settings, err := settingsService.Get()
	if err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'tala config set <key> <value>' to fix configuration issues.")
		return nil
	}

	cmd.Printf("Vector store: %s, embeddings: %s (%d dims)\n",
		settings.VectorStore.Backend.Description(), settings.Embedding.Provider, settings.Embedding.Dimensions)
	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Value for %s: ", key)
		v, err := readSecret(cmd.InOrStdin())
		cmd.Println()
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		value = v
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, settingsService.Display(key))
	return nil
}

// readSecret reads one line, without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
