// Package commands implements CLI command handlers for gitkarma.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitkarma/internal/audit"
	"github.com/Sumatoshi-tech/gitkarma/internal/config"
	"github.com/Sumatoshi-tech/gitkarma/internal/gitblame"
	"github.com/Sumatoshi-tech/gitkarma/internal/observability"
	"github.com/Sumatoshi-tech/gitkarma/internal/profiling"
	"github.com/Sumatoshi-tech/gitkarma/internal/render"
	"github.com/Sumatoshi-tech/gitkarma/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitkarma/pkg/persist"
	"github.com/Sumatoshi-tech/gitkarma/pkg/stats"
	"github.com/Sumatoshi-tech/gitkarma/pkg/version"
)

// snapshotBasename names the persisted stats snapshot inside --snapshot.
const snapshotBasename = "karma-stats"

// RunCommand holds the flag state of the run command.
type RunCommand struct {
	path       string
	configPath string
	rev        string
	format     string

	htmlDir     string
	snapshotDir string

	thresholds      []int
	workers         int
	includeVendored bool

	diagAddr     string
	otlpEndpoint string
	cpuprofile   string
	heapprofile  string

	verbose bool
	noColor bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Audit a revision and report karma statistics",
		Long:  "Audit every attributable file of a revision and report karma statistics.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.path, "path", "p", ".", "Repository path to audit")
	cmd.Flags().StringVar(&rc.configPath, "config", "", "Config file path (default: .gitkarma.yaml in . or $HOME)")
	cmd.Flags().StringVar(&rc.rev, "rev", "HEAD", "Revision to audit")
	cmd.Flags().StringVar(&rc.format, "format", stats.FormatText, "Output format: text, json, yaml")

	cmd.Flags().StringVar(&rc.htmlDir, "html-dir", "", "Write an HTML report into this directory")
	cmd.Flags().StringVar(&rc.snapshotDir, "snapshot", "", "Write a compressed stats snapshot into this directory")

	cmd.Flags().IntSliceVar(&rc.thresholds, "thresholds", nil, "Distribution thresholds (default 140,70,50,30,15,7,3)")
	cmd.Flags().IntVar(&rc.workers, "workers", 0, "Number of blame workers (0 = use CPU count)")
	cmd.Flags().BoolVar(&rc.includeVendored, "include-vendored", false, "Audit vendored paths too")

	cmd.Flags().StringVar(&rc.diagAddr, "diag-addr", "", "Serve /healthz, /readyz and /metrics on this address")
	cmd.Flags().StringVar(&rc.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC collector address (empty = no export)")
	cmd.Flags().StringVar(&rc.cpuprofile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&rc.heapprofile, "heapprofile", "", "Write heap profile to file")

	cmd.Flags().BoolVarP(&rc.verbose, "verbose", "v", false, "Debug-level progress output")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored text output")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	format, err := stats.ValidateFormat(rc.format)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyFlagOverrides(cmd, cfg)

	providers, err := observability.Init(rc.observabilityConfig(cfg))
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown", "error", shutdownErr)
		}
	}()

	if rc.diagAddr != "" {
		diag, diagErr := observability.NewDiagnosticsServer(rc.diagAddr, providers.MetricsHandler)
		if diagErr != nil {
			return diagErr
		}

		defer func() { _ = diag.Close() }()

		providers.Logger.Info("diagnostics listening", "addr", diag.Addr())
	}

	stopProfile, err := profiling.MaybeStartCPUProfile(rc.cpuprofile)
	if err != nil {
		return err
	}

	defer stopProfile()
	defer profiling.MaybeWriteHeapProfile(rc.heapprofile, providers.Logger)

	result, err := rc.audit(cmd.Context(), rc.resolvePath(args), cfg, providers)
	if err != nil {
		return err
	}

	err = rc.report(cmd.OutOrStdout(), format, cfg, result.Stats)
	if err != nil {
		return err
	}

	return rc.writeArtifacts(cfg, result)
}

func (rc *RunCommand) resolvePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return rc.path
}

// applyFlagOverrides lets explicitly set flags win over the config file.
func (rc *RunCommand) applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("thresholds") {
		cfg.Thresholds = rc.thresholds
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = rc.workers
	}

	if rc.includeVendored {
		cfg.Skip.Vendored = false
	}

	if cmd.Flags().Changed("html-dir") {
		cfg.Report.Dir = rc.htmlDir
	}

	if rc.verbose {
		cfg.Log.Level = "debug"
	}

	// The root command registers --quiet as a persistent flag; absent when
	// the command runs standalone in tests.
	quiet, err := cmd.Flags().GetBool("quiet")
	if err == nil && quiet {
		cfg.Log.Level = "error"
	}
}

func (rc *RunCommand) observabilityConfig(cfg *config.Config) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = rc.otlpEndpoint
	obsCfg.OTLPInsecure = true
	obsCfg.Prometheus = rc.diagAddr != ""
	obsCfg.LogLevel = observability.ParseLogLevel(cfg.Log.Level)
	obsCfg.LogJSON = cfg.Log.JSON

	return obsCfg
}

func (rc *RunCommand) audit(
	ctx context.Context, path string, cfg *config.Config, providers observability.Providers,
) (*audit.Result, error) {
	repo, err := gitlib.LoadRepository(path)
	if err != nil {
		return nil, err
	}

	defer repo.Free()

	metrics, err := observability.NewAuditMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	engine := audit.NewEngine(repo, gitblame.NewRunner(repo.Workdir()))
	engine.Logger = providers.Logger
	engine.Tracer = providers.Tracer
	engine.Metrics = metrics

	return engine.Run(ctx, audit.Options{
		Rev:           rc.rev,
		Workers:       cfg.Workers,
		AuthorKarma:   cfg.Karma,
		SkipPatterns:  cfg.Skip.Patterns,
		SkipVendored:  cfg.Skip.Vendored,
		CollectBlocks: rc.htmlDir != "",
	})
}

func (rc *RunCommand) report(w io.Writer, format string, cfg *config.Config, s *stats.Stats) error {
	thresholds := effectiveThresholds(cfg)

	switch format {
	case stats.FormatJSON:
		return stats.RenderJSON(w, s, thresholds)
	case stats.FormatYAML:
		return stats.RenderYAML(w, s, thresholds)
	default:
		renderer := stats.NewTextRenderer()
		renderer.Thresholds = thresholds
		renderer.NoColor = rc.noColor

		return renderer.Render(w, s)
	}
}

// writeArtifacts persists the optional snapshot and HTML report.
func (rc *RunCommand) writeArtifacts(cfg *config.Config, result *audit.Result) error {
	if rc.snapshotDir != "" {
		persister := persist.NewPersister[stats.Stats](snapshotBasename, persist.NewLZ4Codec())

		err := persister.Save(rc.snapshotDir, func() *stats.Stats { return result.Stats })
		if err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	if rc.htmlDir == "" {
		return nil
	}

	renderer := render.NewRenderer(render.Options{
		Dir:         cfg.Report.Dir,
		Extension:   cfg.File.Extension,
		CommitURL:   cfg.URL.Commit,
		AuthorURL:   cfg.URL.Author,
		Thresholds:  effectiveThresholds(cfg),
		AuthorKarma: cfg.Karma,
	})

	return renderer.Write(result)
}

func effectiveThresholds(cfg *config.Config) []int {
	if len(cfg.Thresholds) > 0 {
		return cfg.Thresholds
	}

	return config.DefaultThresholds
}
