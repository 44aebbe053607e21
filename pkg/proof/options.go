// --- START OF FINAL REVISED FILE pkg/proof/options.go ---
package proof

import (
	"context"
	"log/slog"
	"time"

	"github.com/brandonaviram/proof/pkg/proof/events"
)

// Options holds everything a run needs: user-facing settings populated by the
// configuration layer, plus injected implementations (mapstructure:"-").
type Options struct {
	// --- Run ---
	InputPath      string         `mapstructure:"inputPath"`
	Client         string         `mapstructure:"client"`
	Title          string         `mapstructure:"title"`
	Date           string         `mapstructure:"date"`
	Columns        int            `mapstructure:"columns"`
	OutputPath     string         `mapstructure:"outputPath"`
	ManifestOnly   bool           `mapstructure:"manifestOnly"`
	ManifestFormat ManifestFormat `mapstructure:"manifestFormat"`
	DryRun         bool           `mapstructure:"dryRun"`
	Verbose        bool           `mapstructure:"verbose"`
	TuiEnabled     bool           `mapstructure:"tuiEnabled"`
	AutoOrient     bool           `mapstructure:"autoOrient"`
	Concurrency    int            `mapstructure:"concurrency"`

	// --- Files, storage & logging ---
	IgnorePatterns []string  `mapstructure:"ignore"`
	CacheEnabled   bool      `mapstructure:"cache"`
	ClearCache     bool      `mapstructure:"-"`
	CacheFilePath  string    `mapstructure:"cacheFile"`
	TemplatePath   string    `mapstructure:"templateFile"`
	LogFile        string    `mapstructure:"logFile"`
	Tools          ToolPaths `mapstructure:"tools"`

	// --- Derived / informational ---
	ConfigFilePath string `mapstructure:"-"`
	ProfileName    string `mapstructure:"-"`
	AppVersion     string `mapstructure:"-"`

	// --- Injected dependencies ---
	Logger        slog.Handler     `mapstructure:"-"`
	EventSink     events.Sink      `mapstructure:"-"`
	ToolRunner    ToolRunner       `mapstructure:"-"`
	MetadataCache MetadataCache    `mapstructure:"-"`
	Renderer      DocumentRenderer `mapstructure:"-"`
}

// --- External tools ---

// ToolCommand describes one invocation of an external executable.
type ToolCommand struct {
	Name string
	Args []string
	Dir  string // working directory; empty means the current one
}

// ToolResult holds the captured output of a finished tool.
type ToolResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ToolRunner executes external programs (ffprobe, ffmpeg, typst).
// Run returns an error wrapping ErrToolNotFound when the executable cannot be
// started, ErrToolNonZeroExit (with the result populated) on a failing exit
// status, and ErrToolCancelled when ctx ends first.
// Implementations MUST be safe for concurrent use.
type ToolRunner interface {
	Run(ctx context.Context, cmd ToolCommand) (ToolResult, error)
}

// --- Metadata cache ---

// CachedMetadata is the subset of an AssetRecord that is expensive to compute
// and stable for an unchanged file.
type CachedMetadata struct {
	Width      *int     `json:"width,omitempty"`
	Height     *int     `json:"height,omitempty"`
	ColorSpace *string  `json:"colorSpace,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
	Codec      *string  `json:"codec,omitempty"`
}

// MetadataCache stores probe results keyed by path and validated by size and
// modification time. Lookup and Store MUST be safe for concurrent use.
type MetadataCache interface {
	Lookup(path string, size int64, modTime time.Time) (CachedMetadata, bool)
	Store(path string, size int64, modTime time.Time, meta CachedMetadata) error
}

// NoOpMetadataCache never hits and never stores.
type NoOpMetadataCache struct{}

// Lookup implements MetadataCache, always a miss.
func (NoOpMetadataCache) Lookup(string, int64, time.Time) (CachedMetadata, bool) {
	return CachedMetadata{}, false
}

// Store implements MetadataCache, performs no action.
func (NoOpMetadataCache) Store(string, int64, time.Time, CachedMetadata) error { return nil }

// --- Document rendering ---

// RenderRequest carries the processed records and document settings to a renderer.
type RenderRequest struct {
	Records    []AssetRecord
	Client     string
	Title      string
	Date       string
	Columns    int
	OutputPath string
}

// DocumentRenderer turns processed records into the proof document.
type DocumentRenderer interface {
	Render(ctx context.Context, req RenderRequest) error
}

// NoOpRenderer succeeds without producing output. Useful for dry runs and tests.
type NoOpRenderer struct{}

// Render implements DocumentRenderer.
func (NoOpRenderer) Render(context.Context, RenderRequest) error { return nil }

// renderRequest builds the request for the given records from o.
func (o *Options) renderRequest(records []AssetRecord) RenderRequest {
	return RenderRequest{
		Records:    records,
		Client:     o.Client,
		Title:      o.Title,
		Date:       o.Date,
		Columns:    o.Columns,
		OutputPath: o.OutputPath,
	}
}

// --- END OF FINAL REVISED FILE pkg/proof/options.go ---
