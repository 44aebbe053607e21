// --- START OF FINAL REVISED FILE pkg/proof/types.go ---
package proof

import (
	"path/filepath"
	"strings"
)

// AssetKind classifies a discovered file.
type AssetKind int

const (
	// KindImage covers still images decoded in-process.
	KindImage AssetKind = iota
	// KindVideo covers video containers probed through ffprobe.
	KindVideo
)

// String returns the display name used in manifests ("Image", "Video").
func (k AssetKind) String() string {
	if k == KindVideo {
		return "Video"
	}
	return "Image"
}

// Label returns the lowercase name used in events and the document payload.
func (k AssetKind) Label() string {
	return strings.ToLower(k.String())
}

// MarshalText implements encoding.TextMarshaler.
func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "tiff": {}, "tif": {}, "webp": {},
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "mxf": {},
}

// Classify maps a file extension (with or without the leading dot, any case)
// to an AssetKind. ok is false for unsupported extensions.
func Classify(ext string) (kind AssetKind, ok bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if _, found := imageExtensions[ext]; found {
		return KindImage, true
	}
	if _, found := videoExtensions[ext]; found {
		return KindVideo, true
	}
	return 0, false
}

// ClassifyPath classifies a path by its extension.
func ClassifyPath(path string) (AssetKind, bool) {
	return Classify(filepath.Ext(path))
}

// DiscoveredAsset is a supported file found during discovery.
// Index is its dense, zero-based position in the sorted discovery list.
type DiscoveredAsset struct {
	Path  string
	Kind  AssetKind
	Index int
}

// Filename returns the final path component.
func (a DiscoveredAsset) Filename() string {
	return filepath.Base(a.Path)
}

// Status is the per-asset processing state shown by the dashboard.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// ManifestFormat selects the manifest encoding for --manifest-only runs.
type ManifestFormat string

const (
	ManifestTSV  ManifestFormat = "tsv"
	ManifestJSON ManifestFormat = "json"
	ManifestYAML ManifestFormat = "yaml"
	ManifestTOML ManifestFormat = "toml"
)

// ToolPaths names the external executables used by the pipeline.
type ToolPaths struct {
	FFprobe string `mapstructure:"ffprobe"`
	FFmpeg  string `mapstructure:"ffmpeg"`
	Typst   string `mapstructure:"typst"`
}

// withDefaults fills empty entries with the bare executable names.
func (t ToolPaths) withDefaults() ToolPaths {
	if t.FFprobe == "" {
		t.FFprobe = DefaultFFprobe
	}
	if t.FFmpeg == "" {
		t.FFmpeg = DefaultFFmpeg
	}
	if t.Typst == "" {
		t.Typst = DefaultTypst
	}
	return t
}

// --- END OF FINAL REVISED FILE pkg/proof/types.go ---
