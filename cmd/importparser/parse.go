package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/importparser/internal/actions"
	"github.com/JonMunkholm/importparser/internal/config"
	"github.com/JonMunkholm/importparser/internal/core"
	"github.com/JonMunkholm/importparser/internal/logging"
	"github.com/JonMunkholm/importparser/internal/metrics"
	"github.com/JonMunkholm/importparser/internal/report"
)

type parseOptions struct {
	recordType  string
	actionsFile string
	output      string
	reportDir   string
	format      string
}

func newParseCmd(cfg *config.Config) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Clean an import file into {file}_rti.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.recordType, "type", "t", core.TypeSynthese, "Record type name or abbreviation")
	cmd.Flags().StringVarP(&opts.actionsFile, "config", "c", "", "Action file (YAML); defaults apply when empty")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Destination file (default: {file}_rti.csv)")
	cmd.Flags().StringVarP(&opts.reportDir, "report", "r", "", "Directory the report is saved to (default: REPORT_DIR)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Report format: text, html or json (default: REPORT_FORMAT)")

	return cmd
}

func runParse(cmd *cobra.Command, cfg *config.Config, source string, opts parseOptions) error {
	ctx := cmd.Context()

	rt, err := core.LookupRecordType(opts.recordType)
	if err != nil {
		return err
	}
	format := opts.format
	if format == "" {
		format = cfg.Report.Format
	}
	if !config.ValidReportFormat(format) {
		return fmt.Errorf("unknown report format %q", format)
	}
	reportDir := opts.reportDir
	if reportDir == "" {
		reportDir = cfg.Report.Dir
	}

	actionCfg := actions.Default()
	if opts.actionsFile != "" {
		if actionCfg, err = actions.LoadFile(opts.actionsFile, rt.Name); err != nil {
			return err
		}
	}
	compiled, err := actionCfg.Compile()
	if err != nil {
		return err
	}

	reg, err := loadRegistry(ctx, cfg, rt, nomenclatureTypes(compiled.Nomenclatures))
	if err != nil {
		return err
	}

	r, err := core.Run(ctx, core.RunOptions{
		Source:      source,
		Destination: opts.output,
		Type:        rt,
		Actions:     compiled,
		Registry:    reg,
		Logger:      logging.FromContext(ctx),
	})
	if err != nil {
		return err
	}

	if err := report.Render(ctx, os.Stdout, r, format); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if reportDir != "" {
		path, err := report.Save(ctx, reportDir, r, format, time.Now())
		if err != nil {
			return err
		}
		logging.WithFields(ctx, "type", rt.Name).Info("report saved", "path", path)
	}

	if cfg.Metrics.Textfile != "" {
		m := metrics.NewRun()
		m.Observe(r)
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}
	return nil
}
