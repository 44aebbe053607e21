// --- START OF FINAL REVISED FILE pkg/proof/engine.go ---
package proof

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"

	"github.com/brandonaviram/proof/pkg/proof/events"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Engine orchestrates discovery, per-asset processing and rendering.
type Engine struct {
	opts        *Options
	logger      *slog.Logger
	processor   *Processor
	sink        events.Sink
	renderer    DocumentRenderer
	concurrency int
}

// NewEngine validates the injected dependencies in opts and builds an Engine.
// A nil EventSink, MetadataCache or Renderer falls back to its no-op variant.
func NewEngine(opts Options) (*Engine, error) { // minimal comment
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.ToolRunner == nil {
		return nil, fmt.Errorf("%w: ToolRunner implementation cannot be nil", ErrConfigValidation)
	}
	if opts.EventSink == nil {
		opts.EventSink = events.NoOpSink{}
	}
	if opts.MetadataCache == nil {
		opts.MetadataCache = NoOpMetadataCache{}
	}
	if opts.Renderer == nil {
		opts.Renderer = NoOpRenderer{}
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))
	return &Engine{
		opts:        &opts,
		logger:      logger,
		processor:   NewProcessor(opts.Logger, opts.ToolRunner, opts.MetadataCache, opts.Tools),
		sink:        opts.EventSink,
		renderer:    opts.Renderer,
		concurrency: concurrency,
	}, nil
}

// Discover lists the supported assets under the configured input path.
func (e *Engine) Discover(ctx context.Context) ([]DiscoveredAsset, error) {
	w, err := NewWalker(e.opts.InputPath, e.opts.IgnorePatterns, e.opts.Logger)
	if err != nil {
		return nil, err
	}
	return w.Discover(ctx)
}

// ProcessAll processes assets in parallel on a bounded pool and partitions the
// outcomes. Records come back in natural filename order regardless of
// completion order; error messages are ordered by asset index.
// For each index the sink sees Processing before Processed or Failed, but
// indices interleave freely.
func (e *Engine) ProcessAll(ctx context.Context, assets []DiscoveredAsset, workDir string, generateThumbnails, autoOrient bool) ([]AssetRecord, []string) {
	e.logger.Debug("Processing assets in parallel", slog.Int("count", len(assets)), slog.Int("concurrency", e.concurrency))
	p := pool.NewWithResults[Outcome]().WithMaxGoroutines(e.concurrency)
	for _, asset := range assets {
		p.Go(func() Outcome {
			return e.processTracked(ctx, asset, workDir, generateThumbnails, autoOrient)
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Asset.Index < outcomes[j].Asset.Index })
	return partition(outcomes)
}

// ProcessSequential processes assets one at a time in index order, emitting
// Processing before and Processed/Failed after each one. It stops early and
// returns ctx.Err() when ctx is cancelled between items.
func (e *Engine) ProcessSequential(ctx context.Context, assets []DiscoveredAsset, workDir string, generateThumbnails, autoOrient bool) ([]AssetRecord, []string, error) {
	outcomes := make([]Outcome, 0, len(assets))
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			e.logger.Info("Processing cancelled", slog.Int("completed", len(outcomes)), slog.Int("total", len(assets)))
			return nil, nil, err
		}
		outcomes = append(outcomes, e.processTracked(ctx, asset, workDir, generateThumbnails, autoOrient))
	}
	records, errs := partition(outcomes)
	return records, errs, nil
}

// processTracked wraps ProcessOne with events and panic isolation.
func (e *Engine) processTracked(ctx context.Context, asset DiscoveredAsset, workDir string, generateThumbnails, autoOrient bool) Outcome {
	e.sink.Send(events.Processing{Index: asset.Index})

	var out Outcome
	var catcher panics.Catcher
	catcher.Try(func() {
		out = e.processor.ProcessOne(ctx, asset, workDir, generateThumbnails, autoOrient)
	})
	if r := catcher.Recovered(); r != nil {
		e.logger.Error("Recovered panic while processing asset", slog.String("path", asset.Path), slog.Any("panic", r.Value))
		out = Outcome{Asset: asset, Err: fmt.Errorf("panic while processing '%s': %v", asset.Path, r.Value)}
	}

	if out.OK() {
		e.sink.Send(events.Processed{Index: asset.Index})
	} else {
		e.logger.Debug("Asset failed", slog.String("path", asset.Path), slog.String("error", out.Message()))
		e.sink.Send(events.Failed{Index: asset.Index, Message: out.Message()})
	}
	return out
}

// partition splits outcomes into naturally sorted records and error messages.
func partition(outcomes []Outcome) ([]AssetRecord, []string) {
	records := make([]AssetRecord, 0, len(outcomes))
	var errs []string
	for _, o := range outcomes {
		if o.OK() {
			records = append(records, *o.Record)
		} else {
			errs = append(errs, o.Message())
		}
	}
	SortRecords(records)
	return records, errs
}

// RunLive is the dashboard worker pipeline: discover, process sequentially with
// events, then render. It always ends the event stream with exactly one Done
// or Error event.
func (e *Engine) RunLive(ctx context.Context) (Result, error) {
	res, err := e.runLive(ctx)
	if err != nil {
		e.logger.Error("Run failed", slog.String("error", err.Error()))
		e.sink.Send(events.Error{Message: err.Error()})
		return res, err
	}
	e.sink.Send(events.Done{Output: res.OutputPath, Total: len(res.Records)})
	return res, nil
}

func (e *Engine) runLive(ctx context.Context) (Result, error) {
	var res Result
	assets, err := e.Discover(ctx)
	if err != nil {
		return res, err
	}
	res.Assets = assets
	for _, a := range assets {
		e.sink.Send(events.AssetFound{Filename: a.Filename(), Kind: a.Kind.Label()})
	}
	e.sink.Send(events.ScanDone{Total: len(assets)})

	workDir, err := os.MkdirTemp("", "proof-thumbs-*")
	if err != nil {
		return res, fmt.Errorf("cannot create thumbnail directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			e.logger.Warn("Failed to remove thumbnail directory", slog.String("path", workDir), slog.String("error", rmErr.Error()))
		}
	}()

	records, errs, err := e.ProcessSequential(ctx, assets, workDir, true, e.opts.AutoOrient)
	if err != nil {
		return res, err
	}
	res.Records, res.Errors = records, errs
	if len(records) == 0 {
		return res, ErrNoAssetsProcessed
	}

	e.sink.Send(events.Rendering{})
	if err := e.renderer.Render(ctx, e.opts.renderRequest(records)); err != nil {
		return res, err
	}
	res.OutputPath = e.opts.OutputPath
	e.logger.Info("Run complete", slog.Int("records", len(records)), slog.Int("failed", len(errs)), slog.String("output", res.OutputPath))
	return res, nil
}

// Render hands records to the configured renderer.
func (e *Engine) Render(ctx context.Context, records []AssetRecord) error {
	return e.renderer.Render(ctx, e.opts.renderRequest(records))
}

// --- END OF FINAL REVISED FILE pkg/proof/engine.go ---
