package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"stratum-hq/ganymede/pkg/cli"
	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/results"
	"stratum-hq/ganymede/pkg/results/retention"
	resultstorage "stratum-hq/ganymede/pkg/results/storage"
	"stratum-hq/ganymede/pkg/sim/checkpoint"
	"stratum-hq/ganymede/pkg/sim/engine"
	"stratum-hq/ganymede/pkg/sim/model"
	"stratum-hq/ganymede/pkg/sim/rule"
	"stratum-hq/ganymede/pkg/sim/rules"
	"stratum-hq/ganymede/pkg/sim/ruleset"
	"stratum-hq/ganymede/pkg/telemetry/health"
	"stratum-hq/ganymede/pkg/telemetry/logging"
	"stratum-hq/ganymede/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

var runFlags struct {
	steps       int
	seed        int64
	rulesPath   string
	logLevel    string
	description string
	resume      string
	dryRun      bool
	progress    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation with the specified configuration.

The simulation seeds a model from the configuration, registers the rule
set, and drives ticks until the step limit is reached or the model
converges (a tick applies no state changes). Per-tick aggregates are
written to the results store.

Examples:
  # Run with default config
  ganymede run

  # Run with custom config
  ganymede run --config /etc/ganymede/ganymede.yaml

  # Override step limit and seed
  ganymede run --steps 500 --seed 42

  # Load rules from a file instead of the built-in defaults
  ganymede run --rules rules.yaml

  # Resume a checkpointed run from its latest snapshot
  ganymede run --resume 6f1c9b2e-...

  # Validate config without running
  ganymede run --dry-run`,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.steps, "steps", 0, "override maximum tick count")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0, "override random seed for agent initialization")
	runCmd.Flags().StringVar(&runFlags.rulesPath, "rules", "", "override rule set file or directory")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.description, "description", "", "free-form run description stored with results")
	runCmd.Flags().StringVar(&runFlags.resume, "resume", "", "resume the given run ID from its latest checkpoint")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without running")
	runCmd.Flags().BoolVar(&runFlags.progress, "progress", false, "render a tick progress bar")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.steps > 0 {
		cfg.Simulation.MaxSteps = runFlags.steps
	}
	if runFlags.seed != 0 {
		cfg.Simulation.Seed = runFlags.seed
	}
	if runFlags.rulesPath != "" {
		cfg.Rules.Path = runFlags.rulesPath
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	cfg.Simulation.Seed = effectiveSeed(cfg.Simulation.Seed)
	if runFlags.resume != "" && !cfg.Checkpoint.Enabled {
		return cli.NewConfigError("checkpoint", "--resume requires checkpointing to be enabled")
	}

	appLogger, err := logging.New(logging.Config{
		Level:      cfg.Telemetry.Logging.Level,
		Format:     cfg.Telemetry.Logging.Format,
		AddSource:  cfg.Telemetry.Logging.AddSource,
		BufferSize: cfg.Telemetry.Logging.BufferSize,
		Writer:     os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	defer appLogger.Shutdown()

	logger := appLogger.Slog()
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Stratum Ganymede v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Seed the model
	m := seedModel(&cfg.Simulation)
	fmt.Printf("✓ Model seeded (%d agents, seed %d)\n", m.AgentCount(), cfg.Simulation.Seed)

	// Create the engine
	eng, err := engine.New(m, &engine.Config{
		Workers:           cfg.Simulation.Workers,
		RuleTimeout:       cfg.Simulation.RuleTimeout,
		MaxEffectsPerTick: cfg.Simulation.MaxEffectsPerTick,
		EnableTrace:       verbose,
	}, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Register rules
	factory := ruleset.NewFactory()
	if err := rules.RegisterKinds(factory); err != nil {
		return cli.NewCommandError("run", err)
	}

	ruleList, err := loadRules(factory, cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if err := eng.Registry().Replace(ruleList); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("✓ Rules registered (%d rules)\n", eng.Registry().Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot reload of the rule set
	if cfg.Rules.Watch && cfg.Rules.Path != "" {
		watcherCfg := ruleset.DefaultWatcherConfig(cfg.Rules.Path)
		if cfg.Rules.DebounceInterval > 0 {
			watcherCfg.DebounceInterval = cfg.Rules.DebounceInterval
		}
		watcher, err := ruleset.NewWatcher(watcherCfg, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			err := watcher.Watch(ctx, func() error {
				reloaded, err := loadRules(factory, cfg, logger)
				if err != nil {
					return err
				}
				return eng.Registry().Replace(reloaded)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("rule watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Println("✓ Rule hot reload enabled")
	}

	// Checkpointing. Opened before the results store so a resumed model
	// is restored before the run record is touched.
	var ckpt *checkpoint.SQLiteStore
	if cfg.Checkpoint.Enabled {
		ckpt, err = checkpoint.NewSQLiteStore(checkpoint.SQLiteStoreConfig{
			DBPath: cfg.Checkpoint.Path,
			Keep:   cfg.Checkpoint.Keep,
		})
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer ckpt.Close()
		fmt.Printf("✓ Checkpoint store initialized (every %d ticks)\n", cfg.Checkpoint.Interval)
	}

	if runFlags.resume != "" {
		tick, err := resumeModel(ctx, ckpt, runFlags.resume, m)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("✓ Resumed run %s at tick %d\n", runFlags.resume, tick)
	}

	// Results collection
	var collector *results.Collector
	var store results.Store
	if cfg.Results.Enabled {
		store, err = openResultsStore(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()

		collector = results.NewCollector(store, logger)
		var runID string
		if runFlags.resume != "" {
			runID, err = collector.ResumeRun(ctx, runFlags.resume)
		} else {
			runID, err = collector.BeginRun(ctx, m, cfg.Simulation.Seed, runFlags.description)
		}
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("✓ Results store initialized (run %s)\n", runID)

		if cfg.Results.Retention.Schedule != "" {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays:  cfg.Results.Retention.Days,
				PruneSchedule:  cfg.Results.Retention.Schedule,
				MaxTickRecords: cfg.Results.Retention.MaxTickRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("results retention scheduler started", "next_pruning", next)
				}
			}
		}
	}

	// Every log line below carries the run identity.
	ctx = logging.WithRunID(ctx, collectorRunID(collector))

	status := &runStatus{}

	// Metrics endpoint
	var metricsServer *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		mc := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
		eng.SetRecorder(mc)
		mc.SetAgentCount(m.AgentCount())

		checker := health.New(0)
		if store != nil {
			checker.RegisterCheck("results", func(ctx context.Context) error {
				_, err := store.ListRuns(ctx, 1)
				return err
			})
		}
		if ckpt != nil {
			checker.RegisterCheck("checkpoint", func(ctx context.Context) error {
				_, err := ckpt.Ticks(ctx, collectorRunID(collector))
				return err
			})
		}

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, mc.Handler())
		mux.Handle("/healthz", checker.LivenessHandler())
		mux.Handle("/readyz", checker.ReadinessHandler())
		mux.Handle("/statusz", health.StatusHandler(func() health.SimStatus {
			return health.SimStatus{
				RunID:     collectorRunID(collector),
				Tick:      eng.CurrentTick(),
				Agents:    m.AgentCount(),
				Rules:     eng.Registry().Len(),
				Converged: status.converged(),
			}
		}))
		metricsServer = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Warn("metrics server stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Telemetry.Metrics.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	// Cancel the tick loop on SIGINT/SIGTERM.
	go func() {
		select {
		case sig := <-cli.WaitForShutdown():
			fmt.Printf("\nReceived signal %s, stopping after current tick...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Println()
	report, err := driveTicks(ctx, eng, cfg, collector, ckpt, status, appLogger)

	if collector != nil {
		if finishErr := collector.Finish(context.Background()); finishErr != nil {
			slog.Error("failed to finish run record", "error", finishErr)
		}
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Simulation finished at tick %d\n", eng.CurrentTick())
	if report != nil && !report.Changed {
		fmt.Println("✓ Model converged (no state changes in final tick)")
	}
	printSummary(m)
	return nil
}

// runStatus shares convergence state between the tick loop and the
// status endpoint.
type runStatus struct {
	mu   sync.Mutex
	done bool
}

func (s *runStatus) set(converged bool) {
	s.mu.Lock()
	s.done = converged
	s.mu.Unlock()
}

func (s *runStatus) converged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// driveTicks runs the tick loop until the step limit, convergence, or
// cancellation. It returns the last tick report. The context carries the
// run ID; each iteration adds the current tick so every log line below
// is attributable to one tick of one run.
func driveTicks(ctx context.Context, eng *engine.Engine, cfg *config.Config, collector *results.Collector, ckpt *checkpoint.SQLiteStore, status *runStatus, log *logging.Logger) (*engine.TickReport, error) {
	var progress cli.ProgressReporter
	if runFlags.progress {
		progress = cli.NewTickProgress(os.Stdout)
		progress.Start(uint64(cfg.Simulation.MaxSteps))
	}

	var report *engine.TickReport
	for step := 0; step < cfg.Simulation.MaxSteps; step++ {
		if ctx.Err() != nil {
			break
		}
		tickCtx := logging.WithTick(ctx, eng.CurrentTick())

		var err error
		report, err = eng.RunTick(tickCtx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			if progress != nil {
				progress.Error(err)
			}
			return report, fmt.Errorf("tick %d failed: %w", step, err)
		}
		log.DebugContext(tickCtx, "tick applied",
			"applied", report.Applied,
			"changed", report.Changed,
		)

		if collector != nil {
			if err := collector.Collect(tickCtx, eng.Model(), report); err != nil {
				log.WarnContext(tickCtx, "failed to record tick results", "error", err)
			}
		}
		if ckpt != nil && cfg.Checkpoint.Interval > 0 && (step+1)%cfg.Checkpoint.Interval == 0 {
			if err := ckpt.Save(tickCtx, collectorRunID(collector), eng.Model().Snapshot()); err != nil {
				log.WarnContext(tickCtx, "failed to save checkpoint", "error", err)
			}
		}
		if progress != nil {
			progress.Update(uint64(step + 1))
		}

		if !report.Changed {
			status.set(true)
			break
		}
	}

	if progress != nil {
		progress.Finish()
	}
	return report, nil
}

// loadRules builds the rule list from the configured rule set path, or
// the built-in defaults when no path is set.
func loadRules(factory *ruleset.Factory, cfg *config.Config, logger *slog.Logger) ([]rule.Rule, error) {
	if cfg.Rules.Path == "" {
		return rules.DefaultsWith(cfg.Simulation.PsychSafetyThreshold, cfg.Simulation.BaseWorkUnits)
	}

	loader := ruleset.NewLoader(cfg.Rules.Path, logger)
	doc, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return factory.BuildAll(doc)
}

// effectiveSeed returns the seed to use for model initialization. Zero
// means no seed was configured; one is derived from the clock.
func effectiveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// resumeModel restores the model from the latest checkpoint of the
// given run.
func resumeModel(ctx context.Context, ckpt *checkpoint.SQLiteStore, runID string, m *model.Model) (uint64, error) {
	st, err := ckpt.Latest(ctx, runID)
	if err != nil {
		return 0, fmt.Errorf("no checkpoint for run %s: %w", runID, err)
	}
	m.Restore(st)
	return st.Tick, nil
}

// seedModel builds the initial model state. Agent attributes are drawn
// from a seeded source so runs with the same seed start identically.
func seedModel(cfg *config.SimulationConfig) *model.Model {
	rng := rand.New(rand.NewSource(cfg.Seed))

	m := model.New()
	m.SetGlobal(rules.GlobalPsychSafety, cfg.InitialPsychSafety)
	m.SetGlobal(rules.GlobalCollaborationFactor, 0.0)

	for i := 0; i < cfg.Engineers; i++ {
		id := fmt.Sprintf("engineer-%03d", i+1)
		attrs := map[string]any{
			rules.AttrTaskProgress:       0.0,
			rules.AttrTasksRemaining:     float64(cfg.InitialTasks),
			rules.AttrTasksCompleted:     0.0,
			rules.AttrWorkEfficiency:     0.6 + 0.4*rng.Float64(),
			rules.AttrKnowledge:          0.2 + 0.4*rng.Float64(),
			rules.AttrLearningRate:       0.05 + 0.1*rng.Float64(),
			rules.AttrPPS:                0.4 + 0.3*rng.Float64(),
			rules.AttrCommunicationSkill: 0.3 + 0.5*rng.Float64(),
			rules.AttrMotivation:         0.5 + 0.4*rng.Float64(),
		}
		// AddAgent only fails on duplicate IDs, which the loop cannot
		// produce.
		_ = m.AddAgent(model.NewAgent(id, attrs))
	}
	return m
}

// openResultsStore creates the configured results backend.
func openResultsStore(cfg *config.Config) (results.Store, error) {
	switch cfg.Results.Backend {
	case "sqlite":
		return resultstorage.NewSQLiteStore(&resultstorage.SQLiteConfig{
			Path:         cfg.Results.SQLite.Path,
			MaxOpenConns: cfg.Results.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Results.SQLite.MaxIdleConns,
			WALMode:      cfg.Results.SQLite.WALMode,
			BusyTimeout:  cfg.Results.SQLite.BusyTimeout,
		})
	case "memory":
		return resultstorage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported results backend: %s", cfg.Results.Backend)
	}
}

func collectorRunID(collector *results.Collector) string {
	if collector != nil {
		return collector.RunID()
	}
	if runFlags.resume != "" {
		return runFlags.resume
	}
	return "local"
}

func printSummary(m *model.Model) {
	var completed, remaining float64
	for _, id := range m.AgentIDs() {
		view, ok := m.View(id)
		if !ok {
			continue
		}
		completed += view.FloatOr(rules.AttrTasksCompleted, 0)
		remaining += view.FloatOr(rules.AttrTasksRemaining, 0)
	}

	safety, _ := m.GlobalFloat(rules.GlobalPsychSafety)
	collab, _ := m.GlobalFloat(rules.GlobalCollaborationFactor)

	fmt.Println("\nSummary:")
	fmt.Printf("  Tasks completed:       %.0f\n", completed)
	fmt.Printf("  Tasks remaining:       %.0f\n", remaining)
	fmt.Printf("  Psychological safety:  %.3f\n", safety)
	fmt.Printf("  Collaboration factor:  %.3f\n", collab)
}
