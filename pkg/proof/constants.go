// --- START OF FINAL REVISED FILE pkg/proof/constants.go ---
package proof

import "time"

// Constants defining default values for configuration options.
// These seed the Viper defaults in the CLI configuration layer.
const (
	// DefaultClient is the client name used when none is given.
	DefaultClient = "Delivery"
	// DefaultColumns is the default thumbnail grid width.
	DefaultColumns = 4
	// MinColumns and MaxColumns bound the grid width.
	MinColumns = 3
	MaxColumns = 8
	// DateLayout is the Go layout for the delivery date ("YYYY-MM-DD").
	DateLayout = "2006-01-02"
	// DefaultTuiEnabled is the default state for the dashboard.
	DefaultTuiEnabled = true
	// DefaultAutoOrient controls EXIF orientation correction before measuring images.
	DefaultAutoOrient = false
	// DefaultManifestFormat is the manifest encoding used by --manifest-only.
	DefaultManifestFormat = ManifestTSV
	// DefaultConcurrency determines the default number of workers. 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultCacheEnabled is the default state for the metadata cache.
	DefaultCacheEnabled = true

	// DefaultFFprobe, DefaultFFmpeg and DefaultTypst are looked up on PATH.
	DefaultFFprobe = "ffprobe"
	DefaultFFmpeg  = "ffmpeg"
	DefaultTypst   = "typst"
)

const (
	// ThumbnailSize is the bounding box edge, in pixels, for generated thumbnails.
	ThumbnailSize = 300
	// ThumbnailQuality is the JPEG quality used for image thumbnails.
	ThumbnailQuality = 85
	// ThumbnailDir is the directory name thumbnails are referenced under in the payload.
	ThumbnailDir = "thumbs"
	// IgnoreFileName is read from the input root for additional ignore patterns.
	IgnoreFileName = ".proofignore"
	// TickInterval is the dashboard refresh period.
	TickInterval = 80 * time.Millisecond
	// Placeholder is printed for absent manifest values.
	Placeholder = "—"
)

// --- END OF FINAL REVISED FILE pkg/proof/constants.go ---
