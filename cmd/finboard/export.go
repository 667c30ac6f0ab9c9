package main

import (
	"fmt"

	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/metrics"
	"github.com/newthinker/finboard/internal/snapshot"
	"github.com/newthinker/finboard/internal/storage/archive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportSymbol  string
	exportReport  string
	exportPeriod  string
	exportIndices bool
	exportKeep    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a financial statement snapshot to the archive",
	Long: `Export fetches the financial table for one symbol, report type and
period, renders it as a standalone HTML page and writes it to the configured
archive under snapshots/<symbol>/.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSymbol, "symbol", "", "stock symbol (default from dashboard config)")
	exportCmd.Flags().StringVar(&exportReport, "report", "", "report type id (default from dashboard config)")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "", "yearly or quarterly (default from dashboard config)")
	exportCmd.Flags().BoolVar(&exportIndices, "indices", true, "include the market index board")
	exportCmd.Flags().IntVar(&exportKeep, "keep", 0, "keep only the newest N snapshots of this selection (0 keeps all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	store, err := archive.New(cfg.Archive)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}
	client := newBackend(cfg, reg, log)

	sel := core.FilterSelection{
		Symbol:       orDefault(exportSymbol, cfg.Dashboard.DefaultSymbol),
		ReportTypeID: orDefault(exportReport, cfg.Dashboard.DefaultReportType),
		Period:       core.Period(orDefault(exportPeriod, cfg.Dashboard.DefaultPeriod)),
	}

	var recorder snapshot.Recorder
	if reg != nil {
		recorder = reg
	}
	exporter := snapshot.New(client, store, recorder, log.Named("snapshot"))

	res, err := exporter.Export(cmd.Context(), snapshot.Request{
		Selection:   sel,
		WithIndices: exportIndices,
		Keep:        exportKeep,
	})
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows, %d indices)\n", res.Path, res.Rows, res.Indices)
	for _, p := range res.Pruned {
		log.Info("pruned snapshot", zap.String("path", p))
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
