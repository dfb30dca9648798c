package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/contestharvester/config"
	"sjsage522/contestharvester/internal/crawler"
	"sjsage522/contestharvester/services/snapshot"
	"sjsage522/contestharvester/services/worker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const allSources = "all"

// newRootCommand builds the CLI. load supplies the configuration once a
// subcommand runs.
func newRootCommand(load func() (*config.Config, error)) *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "contestharvester",
		Short:        "Harvest contest listings into daily snapshots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		harvestCommand(&cfg),
		refreshCommand(&cfg),
		statusCommand(&cfg),
		showCommand(&cfg),
		scheduleCommand(&cfg),
	)
	return root
}

// resolveSources turns a command line argument into source keys
func resolveSources(args []string) ([]string, error) {
	if len(args) == 0 || args[0] == allSources {
		return crawler.SourceKeys, nil
	}
	for _, key := range crawler.SourceKeys {
		if args[0] == key {
			return []string{key}, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q (want %s or one of %v)", args[0], allSources, crawler.SourceKeys)
}

func newWorker(cmd *cobra.Command, cfg *config.Config, args []string) (*worker.Worker, *Services, error) {
	sources, err := resolveSources(args)
	if err != nil {
		return nil, nil, err
	}

	services := initializeServices(cmd.Context(), cfg)
	refreshers, err := buildRefreshers(cfg, services, sources)
	if err != nil {
		services.Cleanup()
		return nil, nil, err
	}
	return worker.NewWorker(cmd.Context(), refreshers, services.Publisher, services.Failures), services, nil
}

// reportResults prints one line per source and fails if any source failed
func reportResults(cmd *cobra.Command, results []worker.Result) error {
	out := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to harvest %s: %v\n", r.Source, r.Err)
		case r.Refreshed:
			fmt.Fprintf(out, "Saved %d contests to %s\n", len(r.Snapshot.Records), r.Path)
		case r.Stale:
			stamp := r.Snapshot.LastHarvested
			if stamp == "" {
				stamp = "never"
			}
			fmt.Fprintf(out, "%s not refreshed: already attempted this session, snapshot is still stale (last harvested %s, %d contests)\n",
				r.Source, stamp, len(r.Snapshot.Records))
		default:
			fmt.Fprintf(out, "%s is up to date (last harvested %s, %d contests)\n",
				r.Source, r.Snapshot.LastHarvested, len(r.Snapshot.Records))
		}
	}

	if failed := worker.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d sources failed", len(failed), len(results))
	}
	return nil
}

func harvestCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "harvest [all|contestkorea|ics]",
		Short:     "Harvest sources now and replace their snapshots",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: append([]string{allSources}, crawler.SourceKeys...),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, services, err := newWorker(cmd, *cfg, args)
			if err != nil {
				return err
			}
			defer services.Cleanup()

			return reportResults(cmd, w.RunAll(true))
		},
	}
}

func refreshCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [all|contestkorea|ics]",
		Short: "Harvest only the sources whose snapshot is not from today",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, services, err := newWorker(cmd, *cfg, args)
			if err != nil {
				return err
			}
			defer services.Cleanup()

			return reportResults(cmd, w.RunAll(false))
		},
	}
}

// harvestedLabel describes a snapshot's stamp: never for a missing file,
// unknown for a file without a usable stamp.
func harvestedLabel(store *snapshot.Store, snap snapshot.Snapshot) string {
	if _, err := os.Stat(store.Path()); errors.Is(err, fs.ErrNotExist) {
		return "never"
	}
	if !snap.Harvested() {
		return "unknown"
	}
	return snap.LastHarvested
}

func statusCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the snapshot of every source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Source", "File", "Last Harvested", "Contests", "Stale"})

			for _, source := range crawler.SourceKeys {
				store := snapshot.NewStore(source, snapshotPath(*cfg, source))
				snap := store.Load()
				t.AppendRow(table.Row{
					source,
					store.Path(),
					harvestedLabel(store, snap),
					len(snap.Records),
					snapshot.IsStale(snap, time.Now()),
				})
			}

			t.Render()
			return nil
		},
	}
}

func showCommand(cfg **config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "show <contestkorea|ics>",
		Short:     "List the stored contests of a source",
		Args:      cobra.ExactArgs(1),
		ValidArgs: crawler.SourceKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := resolveSources(args)
			if err != nil {
				return err
			}
			if len(sources) != 1 {
				return fmt.Errorf("show needs a single source, one of %v", crawler.SourceKeys)
			}

			store := snapshot.NewStore(sources[0], snapshotPath(*cfg, sources[0]))
			snap := store.Load()
			records := snap.Records
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d contests, last harvested %s\n",
				sources[0], len(snap.Records), harvestedLabel(store, snap))

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Title", "Category", "Organization", "Target", "D-Day", "Link"})
			for i, r := range records {
				t.AppendRow(table.Row{i + 1, r.Title, r.Category, r.Organization, r.Target, r.DaysLeft, r.Link})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of contests to list (0 lists all)")
	return cmd
}

func scheduleCommand(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Refresh stale snapshots now and then on REFRESH_SCHEDULE until stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			w, services, err := newWorker(cmd, *cfg, nil)
			if err != nil {
				return err
			}
			defer services.Cleanup()

			return w.Start((*cfg).RefreshSchedule)
		},
	}
}
