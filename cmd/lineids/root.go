package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/internal"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/store"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/zones"
)

var (
	flagConfig   string
	flagScenario string
	flagLogLevel string
	flagDryRun   bool
	flagOut      string
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:           "lineids",
	Short:         "Assigns area-coded line identifiers to GTFS-imported transit lines",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadAppConfig(flagConfig); err != nil {
			return err
		}
		level := config.Config.Logging.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		l, err := internal.NewLogger(level, config.Config.Logging.Development)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config.yml (default: config.yml, ./configs/config.yml)")
	rootCmd.PersistentFlags().StringVar(&flagScenario, "scenario", "", "Scenario name from config.scenarios[]")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	for _, c := range []*cobra.Command{renameCmd, modesCmd, runCmd} {
		c.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the planned changes without publishing")
	}
	filterCmd.Flags().StringVar(&flagOut, "out", "", "Output YAML path (overrides gtfs.output)")

	rootCmd.AddCommand(initCmd, renameCmd, modesCmd, runCmd, filterCmd)
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadZones() (*zones.Index, error) {
	z := config.Config.Zones
	ix, err := zones.Load(z.Path, z.NameProperty)
	if err != nil {
		return nil, err
	}
	logger.Info("zones loaded", zap.String("path", z.Path), zap.Int("zones", ix.Len()))
	return ix, nil
}

func openStore(ctx context.Context) (store.LineStore, error) {
	sc := config.SelectStore(flagScenario)
	return store.Open(ctx, sc, logger)
}
