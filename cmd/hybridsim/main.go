package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/hybridsim/internal/config"
	"github.com/san-kum/hybridsim/internal/export"
)

var (
	dataDir  string
	logLevel string
	jsonLog  bool

	configFile  string
	preset      string
	dt          float64
	maxDuration float64
	temperature float64
	valve       string
	strictFlux  bool
	save        bool
	runName     string
	plot        bool

	outPath string
	engine  export.Engine

	overrides []string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers every command. Flag variables are reset to their
// defaults on each call.
func newRootCmd() *cobra.Command {
	engine = export.DefaultEngine()

	rootCmd := &cobra.Command{
		Use:           "hybridsim",
		Short:         "nitrous oxide hybrid motor firing simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hybridsim", "run archive directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "log as JSON lines")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fire the motor and print a performance summary",
		Args:  cobra.NoArgs,
		RunE:  runFiring,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	runCmd.Flags().Float64Var(&dt, "dt", 0.01, "time step (s)")
	runCmd.Flags().Float64Var(&maxDuration, "max-duration", 120, "burn time cap (s)")
	runCmd.Flags().Float64Var(&temperature, "temperature", 298.15, "initial tank temperature (K)")
	runCmd.Flags().StringVar(&valve, "valve", "thick-orifice", "valve loss model (kv, thick-orifice)")
	runCmd.Flags().BoolVar(&strictFlux, "strict-flux", false, "end the firing when oxidizer flux exceeds the limit")
	runCmd.Flags().BoolVar(&save, "save", false, "archive the run")
	runCmd.Flags().StringVar(&runName, "name", "", "archive name (defaults to preset or pulsar)")
	runCmd.Flags().BoolVar(&plot, "plot", false, "print ascii charts")
	runCmd.Flags().StringArrayVar(&overrides, "set", nil, "override a config key, key=value (repeatable)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pressures, thrust, flux and O/F of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export every record of a run as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportTrajCmd := &cobra.Command{
		Use:   "export-traj [run_id]",
		Short: "export the trajectory simulation table (motor_out.csv)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportTrajectory,
	}
	exportTrajCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportEngCmd := &cobra.Command{
		Use:   "export-eng [run_id]",
		Short: "export a RASP .eng thrust curve",
		Args:  cobra.ExactArgs(1),
		RunE:  exportEng,
	}
	exportEngCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	exportEngCmd.Flags().StringVar(&engine.Name, "motor-name", engine.Name, "motor designation")
	exportEngCmd.Flags().Float64Var(&engine.Diameter, "diameter", engine.Diameter, "motor diameter (mm)")
	exportEngCmd.Flags().Float64Var(&engine.Length, "length", engine.Length, "motor length (mm)")
	exportEngCmd.Flags().Float64Var(&engine.DryMass, "dry-mass", engine.DryMass, "motor dry mass (kg)")
	exportEngCmd.Flags().StringVar(&engine.Manufacturer, "manufacturer", engine.Manufacturer, "manufacturer code")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export thrust and pressure charts as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "file prefix (default run id)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "presets:")
			for _, p := range config.ListPresets() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&configFile, "config", "", "config file to merge (yaml)")
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	initCmd.Flags().StringArrayVar(&overrides, "set", nil, "override a config key, key=value (repeatable)")

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "list config keys accepted by --set and HYBRIDSIM_* variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range config.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportTrajCmd, exportEngCmd, exportSVGCmd, presetsCmd, initCmd, keysCmd)
	return rootCmd
}
