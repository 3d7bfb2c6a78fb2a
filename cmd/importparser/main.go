// Command importparser cleans GeoNature and TaxHub import files before they
// are loaded into the database.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/importparser/internal/config"
	"github.com/JonMunkholm/importparser/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, uuid.NewString())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.FromContext(ctx).Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "importparser",
		Short:         "Clean and normalize GeoNature/TaxHub import files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = *loaded
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			logging.FromContext(cmd.Context()).Debug("configuration loaded", "config", cfg.String())
			return nil
		},
	}

	root.AddCommand(newParseCmd(&cfg), newSnapshotCmd(&cfg), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("importparser", version)
		},
	}
}
