// --- START OF FINAL REVISED FILE internal/cli/cli.go ---
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/brandonaviram/proof/internal/cli/hooks"
	"github.com/brandonaviram/proof/internal/cli/runner"
	"github.com/brandonaviram/proof/internal/cli/ui"
	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/cache"
	"github.com/brandonaviram/proof/pkg/proof/events"
	"github.com/brandonaviram/proof/pkg/proof/manifest"
	"github.com/brandonaviram/proof/pkg/proof/render"
)

// Process-level streams and terminal probes. Tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	stderrIsTerminal = func() bool { return term.IsTerminal(int(os.Stderr.Fd())) }

	// runProgram runs the dashboard until the user leaves it.
	runProgram = func(ctx context.Context, m tea.Model) (tea.Model, error) {
		return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	}
)

// Run orchestrates one proof run after configuration loading: it wires the
// default implementations into opts and dispatches to the dry-run, plain or
// dashboard mode.
func Run(ctx context.Context, opts proof.Options, logger *slog.Logger) error {
	runID := uuid.NewString()
	logger = logger.With(slog.String("run", runID))
	if opts.Logger == nil {
		opts.Logger = logger.Handler()
	} else {
		opts.Logger = opts.Logger.WithAttrs([]slog.Attr{slog.String("run", runID)})
	}
	logger.Debug("Starting run", slog.String("input", opts.InputPath), slog.String("version", opts.AppVersion))

	if opts.ToolRunner == nil {
		opts.ToolRunner = runner.NewExecToolRunner(opts.Logger)
	}

	if opts.DryRun {
		return runDryRun(ctx, opts)
	}

	if opts.MetadataCache == nil {
		store := openCache(opts, logger)
		if store != nil {
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("Failed to close metadata cache", slog.String("error", err.Error()))
				}
			}()
			opts.MetadataCache = store
		}
	}
	if opts.Renderer == nil && !opts.ManifestOnly {
		opts.Renderer = render.NewTypstRenderer(opts.Logger, opts.ToolRunner, opts.Tools.Typst, opts.TemplatePath)
	}

	if opts.TuiEnabled && stdoutIsTerminal() {
		return runDashboard(ctx, opts, logger)
	}
	return runPlain(ctx, opts, logger)
}

// openCache opens the metadata cache named by opts, clearing it first when
// requested. Cache problems are logged and never fail the run; a nil store
// means the run proceeds uncached.
func openCache(opts proof.Options, logger *slog.Logger) *cache.Store {
	if opts.CacheFilePath == "" || (!opts.CacheEnabled && !opts.ClearCache) {
		return nil
	}
	store, err := cache.Open(opts.CacheFilePath, opts.AppVersion, opts.Logger)
	if err != nil {
		logger.Warn("Metadata cache unavailable, continuing without it", slog.String("path", opts.CacheFilePath), slog.String("error", err.Error()))
		return nil
	}
	if opts.ClearCache {
		if err := store.Clear(); err != nil {
			logger.Warn("Failed to clear metadata cache", slog.String("error", err.Error()))
		}
	}
	if !opts.CacheEnabled {
		_ = store.Close()
		return nil
	}
	return store
}

// runDryRun lists what a real run would process without touching any asset.
func runDryRun(ctx context.Context, opts proof.Options) error {
	walker, err := proof.NewWalker(opts.InputPath, opts.IgnorePatterns, opts.Logger)
	if err != nil {
		return err
	}
	assets, err := walker.Discover(ctx)
	if err != nil {
		return err
	}
	for _, a := range assets {
		rel, relErr := filepath.Rel(opts.InputPath, a.Path)
		if relErr != nil {
			rel = a.Path
		}
		fmt.Fprintf(stdout, "%d\t%s\t%s\n", a.Index, a.Kind, filepath.ToSlash(rel))
	}
	printFound(assets)
	if opts.ManifestOnly {
		fmt.Fprintf(stderr, "Would print a %s manifest to stdout\n", opts.ManifestFormat)
	} else {
		fmt.Fprintf(stderr, "Would write %s (%d columns)\n", opts.OutputPath, opts.Columns)
	}
	return nil
}

func printFound(assets []proof.DiscoveredAsset) {
	images, videos := proof.CountKinds(assets)
	fmt.Fprintf(stderr, "Found %d assets (%d images, %d videos)\n", len(assets), images, videos)
}

// runPlain processes in parallel and reports on stderr.
func runPlain(ctx context.Context, opts proof.Options, logger *slog.Logger) error {
	fmt.Fprintf(stderr, "Scanning %s...\n", opts.InputPath)
	walker, err := proof.NewWalker(opts.InputPath, opts.IgnorePatterns, opts.Logger)
	if err != nil {
		return err
	}
	assets, err := walker.Discover(ctx)
	if err != nil {
		return err
	}
	printFound(assets)

	// The bar needs the asset count, so the engine is built after discovery.
	var bar *progressbar.ProgressBar
	var h *hooks.CLIHooks
	if !opts.Verbose && stderrIsTerminal() {
		bar = newProgressBar(len(assets))
	}
	if bar != nil || opts.Verbose {
		var pb hooks.ProgressBar
		if bar != nil {
			pb = bar
		}
		h = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, pb, stderr)
		h.Track(assets)
		opts.EventSink = h
	}
	engine, err := proof.NewEngine(opts)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "proof-thumbs-*")
	if err != nil {
		return fmt.Errorf("cannot create thumbnail directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	records, errs := engine.ProcessAll(ctx, assets, workDir, !opts.ManifestOnly, opts.AutoOrient)
	if h != nil {
		h.Finish()
	}
	if ctx.Err() != nil {
		return proof.ErrRunCancelled
	}

	if len(errs) > 0 {
		fmt.Fprintf(stderr, "\n%d files skipped:\n", len(errs))
		for _, msg := range errs {
			fmt.Fprintf(stderr, "  - %s\n", msg)
		}
	}
	if len(records) == 0 {
		return proof.ErrNoAssetsProcessed
	}

	if opts.ManifestOnly {
		return manifest.Write(stdout, records, opts.ManifestFormat)
	}

	fmt.Fprintln(stderr, "Generating PDF...")
	if err := engine.Render(ctx, records); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Done: %s (%d assets)\n", opts.OutputPath, len(records))
	return nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

type liveOutcome struct {
	res proof.Result
	err error
}

// runDashboard runs the live pipeline on a worker goroutine while the
// dashboard drains its events on the UI goroutine.
func runDashboard(ctx context.Context, opts proof.Options, logger *slog.Logger) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := events.NewQueue()
	defer queue.Close()
	opts.EventSink = hooks.NewCLIHooks(logger, true, false, queue, nil, stderr)

	engine, err := proof.NewEngine(opts)
	if err != nil {
		return err
	}

	done := make(chan liveOutcome, 1)
	go func() {
		res, err := engine.RunLive(workerCtx)
		done <- liveOutcome{res: res, err: err}
	}()

	model := ui.NewModel(queue, ui.NewState(opts.Client, opts.Date, opts.Columns), cancel)
	_, progErr := runProgram(ctx, model)

	if progErr != nil || model.Cancelled() || ctx.Err() != nil {
		cancel()
		<-done
		switch {
		case ctx.Err() != nil || model.Cancelled() || errors.Is(progErr, tea.ErrProgramKilled):
			logger.Info("Run cancelled by user")
			return proof.ErrRunCancelled
		default:
			return fmt.Errorf("dashboard failed: %w", progErr)
		}
	}

	out := <-done
	if out.err != nil {
		return out.err
	}
	fmt.Fprintf(stderr, "Done: %s (%d assets)\n", out.res.OutputPath, len(out.res.Records))
	return nil
}

// --- END OF FINAL REVISED FILE internal/cli/cli.go ---
