package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/gtfs-line-ids/config"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/gtfs"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/modes"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/rename"
	"github.com/theoremus-urban-solutions/gtfs-line-ids/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the network store schema if it is missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Init(cmd.Context(), config.SelectStore(flagScenario), logger)
		if err != nil {
			return err
		}
		return st.Close()
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename lines of the configured modes and publish them in one batch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		plan, err := renamePass(ctx, st, flagDryRun)
		if err != nil {
			return err
		}
		if flagDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), renderPlan(plan))
		}
		return nil
	},
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Move sparse-stop and long-distance lines to the express mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		changes, err := modesPass(ctx, st, flagDryRun)
		if err != nil {
			return err
		}
		if flagDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), renderModeChanges(changes))
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rename lines, then reassign modes using the new ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		// Mode changes key on the renamed ids, so a dry run publishes both
		// passes into a scratch copy of the store.
		target := st
		if flagDryRun {
			lines, err := st.Lines(ctx)
			if err != nil {
				return err
			}
			target = store.NewMemory(lines)
		}
		plan, err := renamePass(ctx, target, false)
		if err != nil {
			return err
		}
		changes, err := modesPass(ctx, target, false)
		if err != nil {
			return err
		}
		if flagDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), renderPlan(plan))
			fmt.Fprintln(cmd.OutOrStdout(), renderModeChanges(changes))
		}
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Select the GTFS agencies, route types and routes serving the zoned area",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Config.GTFS
		out := cfg.Output
		if flagOut != "" {
			out = flagOut
		}
		if cfg.Path == "" {
			return errors.New("gtfs.path is not configured")
		}
		if out == "" {
			return errors.New("no output path: set gtfs.output or --out")
		}
		ix, err := loadZones()
		if err != nil {
			return err
		}
		feed, err := gtfs.LoadFile(cfg.Path)
		if err != nil {
			return err
		}
		filter, err := gtfs.NewFilterFromConfig(ix, cfg, logger)
		if err != nil {
			return err
		}
		res, err := filter.Apply(feed)
		if err != nil {
			return err
		}
		if err := gtfs.WriteResult(out, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d agencies, %d routes written to %s\n", len(res.AgencyIDs), len(res.RouteIDs), out)
		return nil
	},
}

func renamePass(ctx context.Context, st store.LineStore, dryRun bool) (*rename.Plan, error) {
	ix, err := loadZones()
	if err != nil {
		return nil, err
	}
	plan, err := rename.NewFromConfig(ix, &config.Config, logger).Run(ctx, st, dryRun)
	if err != nil {
		return nil, err
	}
	if !dryRun {
		logger.Info("rename published", zap.String("run_id", plan.RunID), zap.Int("lines", len(plan.Assignments)))
	}
	return plan, nil
}

func modesPass(ctx context.Context, st store.LineStore, dryRun bool) ([]modes.Change, error) {
	r, err := modes.NewFromConfig(&config.Config, logger)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, st, dryRun)
}
