package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hybridsim/internal/combustion"
	"github.com/san-kum/hybridsim/internal/config"
	"github.com/san-kum/hybridsim/internal/export"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/logging"
	"github.com/san-kum/hybridsim/internal/metrics"
	"github.com/san-kum/hybridsim/internal/motor"
	"github.com/san-kum/hybridsim/internal/nitrous"
	"github.com/san-kum/hybridsim/internal/report"
	"github.com/san-kum/hybridsim/internal/storage"
)

// resolveConfig layers preset, config file, HYBRIDSIM_* environment,
// explicitly set flags and --set overrides, in increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	base := config.DefaultConfig()
	if preset != "" {
		base = config.GetPreset(preset)
		if base == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	cfg, err := config.ResolveFrom(base, configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("max-duration") {
		cfg.Simulation.MaxDuration = maxDuration
	}
	if flags.Changed("temperature") {
		cfg.Tank.Temperature = temperature
	}
	if flags.Changed("valve") {
		cfg.Feed.Valve = valve
	}
	if flags.Changed("strict-flux") {
		cfg.Safety.StopOnExcessiveFlux = strictFlux
	}
	if cmd.Flag("log-level") != nil && cmd.Flag("log-level").Changed {
		cfg.Log.Level = logLevel
	}
	if jsonLog {
		cfg.Log.JSON = true
	}

	if flags.Lookup("set") != nil && len(overrides) > 0 {
		values := make(map[string]any, len(overrides))
		for _, kv := range overrides {
			key, val, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("%w: --set %q, want key=value", hybrid.ErrInvalidConfig, kv)
			}
			values[strings.TrimSpace(key)] = strings.TrimSpace(val)
		}
		if cfg, err = config.Override(cfg, values); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
}

// loadTables reads the propellant and compressibility tables concurrently.
func loadTables(cfg *config.Config) (*combustion.Table, *nitrous.CompressibilityTable, error) {
	var (
		table  *combustion.Table
		ztable *nitrous.CompressibilityTable
		g      errgroup.Group
	)
	g.Go(func() (err error) {
		table, err = combustion.LoadTable(cfg.Tables.Propellant)
		return err
	})
	g.Go(func() (err error) {
		ztable, err = nitrous.LoadCompressibility(cfg.Tables.Compressibility)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return table, ztable, nil
}

func runFiring(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	mc, err := cfg.ToMotor()
	if err != nil {
		return err
	}
	table, ztable, err := loadTables(cfg)
	if err != nil {
		return err
	}

	sim, err := motor.New(mc, table, ztable,
		motor.WithLogger(log),
		motor.WithMetrics(metrics.Standard(mc.MinDropRatio)...),
	)
	if err != nil {
		return err
	}

	result, runErr := sim.Run(cmd.Context())
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	summary := metrics.Summarize(result.Records, mc.StartupTime)

	fmt.Fprintln(out, report.Conditions("Initial conditions", result.Records[0], mc.OuterDiameter))
	fmt.Fprintln(out, report.Conditions("Final conditions", result.Last(), mc.OuterDiameter))
	fmt.Fprintln(out, report.Separator(48))
	fmt.Fprintln(out, report.Summary(result, summary))
	if plot {
		fmt.Fprintln(out, report.All(result.Records, report.DefaultPlotOptions()))
	}

	if save {
		name := runName
		if name == "" {
			name = preset
		}
		if name == "" {
			name = "pulsar"
		}

		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, cfg, result, summary)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		log.Info().Str("run_id", runID).Msg("run archived")
		fmt.Fprintf(out, "saved: %s\n", runID)
	}

	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tOUTCOME\tBURN\tIMPULSE\tISP")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.0fNs\t%.1fs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Summary.BurnTime,
			run.Summary.TotalImpulse,
			run.Summary.MeanIsp,
		)
	}

	return w.Flush()
}

// loadRun reads a run's metadata and records, failing on empty runs.
func loadRun(runID string) (*storage.RunMetadata, []hybrid.StepRecord, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, records, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "outcome: %s\n", meta.Outcome)
	fmt.Fprintf(out, "samples: %d\n\n", len(records))
	fmt.Fprint(out, report.All(records, report.DefaultPlotOptions()))
	return nil
}

// output returns stdout, or the named file when outPath is set.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if err := export.WriteRecords(w, records); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportTrajectory(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	cfg := meta.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	grain := export.Grain{
		Density:       cfg.Grain.Density,
		OuterDiameter: cfg.Grain.OuterDiameter,
		Length:        cfg.Grain.PortLength,
	}
	if err := export.WriteTrajectory(w, records, grain); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportEng(cmd *cobra.Command, args []string) error {
	_, records, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if err := export.WriteEng(w, records, engine); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, records, err := loadRun(args[0])
	if err != nil {
		return err
	}

	prefix := outPath
	if prefix == "" {
		prefix = meta.ID
	}

	charts := []struct{ path, svg string }{
		{prefix + "_thrust.svg", export.ThrustSVG(records, 800, 400)},
		{prefix + "_pressure.svg", export.PressureSVG(records, 800, 400)},
	}
	for _, c := range charts {
		path, svg := c.path, c.svg
		if svg == "" {
			return fmt.Errorf("run %s has too few records to chart", meta.ID)
		}
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}
