package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/importparser/internal/actions"
	"github.com/JonMunkholm/importparser/internal/config"
	"github.com/JonMunkholm/importparser/internal/core"
	"github.com/JonMunkholm/importparser/internal/logging"
	"github.com/JonMunkholm/importparser/internal/registry"
)

func newSnapshotCmd(cfg *config.Config) *cobra.Command {
	var recordType, actionsFile string

	cmd := &cobra.Command{
		Use:   "snapshot <file.sqlite>",
		Short: "Copy the reference codes of a record type into a SQLite snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := core.LookupRecordType(recordType)
			if err != nil {
				return err
			}
			var types []string
			if actionsFile != "" {
				actionCfg, err := actions.LoadFile(actionsFile, rt.Name)
				if err != nil {
					return err
				}
				types = nomenclatureTypes(actionCfg.Nomenclatures)
			}

			// Snapshots are always taken from the live database.
			live := *cfg
			live.Registry.Source = config.SourcePostgres
			reg, err := loadRegistry(ctx, &live, rt, types)
			if err != nil {
				return err
			}

			snap, err := registry.OpenSQLite(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = snap.Close() }()

			if err := snap.WriteSnapshot(ctx, reg); err != nil {
				return err
			}
			logging.FromContext(ctx).Info("snapshot written", "path", snap.Path(), "type", rt.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recordType, "type", "t", core.TypeSynthese, "Record type whose domains are copied")
	cmd.Flags().StringVarP(&actionsFile, "config", "c", "", "Action file restricting the nomenclature types")
	return cmd
}
