// --- START OF FINAL REVISED FILE pkg/proof/processor.go ---
package proof

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Processor extracts metadata and thumbnails for single assets.
// It holds no per-asset state and is safe for concurrent use.
type Processor struct {
	logger *slog.Logger
	runner ToolRunner
	cache  MetadataCache
	tools  ToolPaths
}

// NewProcessor creates a Processor. A nil cache disables caching.
func NewProcessor(loggerHandler slog.Handler, runner ToolRunner, cache MetadataCache, tools ToolPaths) *Processor { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if cache == nil {
		cache = NoOpMetadataCache{}
	}
	return &Processor{
		logger: slog.New(loggerHandler).With(slog.String("component", "processor")),
		runner: runner,
		cache:  cache,
		tools:  tools.withDefaults(),
	}
}

// ProcessOne turns a discovered asset into a record or a failure.
// With generateThumbnail set, the thumbnail is written to workDir as
// NNNN.jpg where NNNN is the zero-padded asset index.
func (p *Processor) ProcessOne(ctx context.Context, asset DiscoveredAsset, workDir string, generateThumbnail, autoOrient bool) Outcome {
	out := Outcome{Asset: asset}
	path := asset.Path

	info, err := os.Stat(path)
	if err != nil {
		out.Err = assetErr(ErrStatFailed, "cannot stat", path, err)
		return out
	}

	rec := &AssetRecord{
		Filename:   filepath.Base(path),
		Kind:       asset.Kind,
		FileSize:   info.Size(),
		Format:     strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
		SourcePath: path,
	}

	switch asset.Kind {
	case KindImage:
		if err := p.processImage(rec, asset, info, workDir, generateThumbnail, autoOrient); err != nil {
			out.Err = err
			return out
		}
	case KindVideo:
		p.processVideo(ctx, rec, asset, info, workDir, generateThumbnail)
	}

	out.Record = rec
	return out
}

// storeMetadata writes to the cache; failures are logged only.
func (p *Processor) storeMetadata(path string, info os.FileInfo, meta CachedMetadata) {
	if err := p.cache.Store(path, info.Size(), info.ModTime(), meta); err != nil {
		p.logger.Warn("Failed to store metadata in cache", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func thumbnailPath(workDir string, index int) string {
	return filepath.Join(workDir, fmt.Sprintf("%04d.jpg", index))
}

// --- END OF FINAL REVISED FILE pkg/proof/processor.go ---
