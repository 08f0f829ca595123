// Package cli provides the tala command-line interface.
// It is a driving adapter: every command talks to the core through the
// driving ports bundled in Services.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Command annotations controlling what PersistentPreRunE builds.
const (
	annotationNoServices   = "tala/no-services"
	annotationSettingsOnly = "tala/settings-only"
)

// ErrNotConfigured is returned when a command runs before SetBuilder.
var ErrNotConfigured = errors.New("services not configured")

var errFoldersUnavailable = errors.New("folder service not configured")

// Services bundles the driving ports used by commands.
type Services struct {
	Ingestion  driving.IngestionService
	Retrieval  driving.RetrievalService
	Collection driving.CollectionService
	Folder     driving.FolderService
	Extractor  driving.TextExtractor
	Settings   driving.SettingsService

	// Config is the loaded configuration the services were built from.
	Config domain.AppSettings

	// Close releases stores and clients. May be nil.
	Close func() error
}

// Builder constructs services on demand so commands that need none
// (version, help) never open a store or dial a vector database.
type Builder interface {
	// Settings opens only the configuration.
	Settings(configPath string) (driving.SettingsService, error)

	// Services builds the full service graph.
	Services(ctx context.Context, configPath string) (*Services, error)
}

var (
	version = "dev"

	builder Builder

	// services is built lazily by PersistentPreRunE; tests set it directly.
	services *Services

	// settingsService backs the config commands.
	settingsService driving.SettingsService

	// ownServices records that services was built here and must be closed.
	ownServices bool

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tala",
	Short: "Travel knowledge base for Tala agents",
	Long: `Tala ingests travel documents (visa rules, airline policies, destination
guides, agency terms) into a vector store and answers natural-language
questions over them.

Each agent searches their own uploads together with the shared admin
knowledge base.`,
	SilenceUsage:       true,
	PersistentPreRunE:  prepareServices,
	PersistentPostRunE: releaseServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.tala/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBuilder sets the service builder used by commands.
func SetBuilder(b Builder) {
	builder = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func prepareServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] != "" || cmd.Name() == "help" {
		return nil
	}

	if cmd.Annotations[annotationSettingsOnly] != "" {
		if settingsService != nil {
			return nil
		}
		if builder == nil {
			return ErrNotConfigured
		}
		s, err := builder.Settings(configPath)
		if err != nil {
			return err
		}
		settingsService = s
		return nil
	}

	if services != nil {
		return nil
	}
	if builder == nil {
		return ErrNotConfigured
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := builder.Services(ctx, configPath)
	if err != nil {
		return err
	}
	services = s
	ownServices = true
	return nil
}

func releaseServices(_ *cobra.Command, _ []string) error {
	if !ownServices || services == nil {
		return nil
	}
	closeFn := services.Close
	services = nil
	ownServices = false
	if closeFn == nil {
		return nil
	}
	return closeFn()
}

// requesterFlags registers --owner and --admin on cmd.
func requesterFlags(cmd *cobra.Command, owner *string, admin *bool) {
	cmd.Flags().StringVarP(owner, "owner", "u", "", "agent ID the request is made for")
	cmd.Flags().BoolVar(admin, "admin", false, "act on the shared admin knowledge base")
}
