// --- START OF FINAL REVISED FILE pkg/proof/report.go ---
package proof

import (
	"fmt"
	"sort"

	"github.com/brandonaviram/proof/pkg/util"
)

// AssetRecord is the metadata extracted from one successfully processed asset.
// Pointer fields are nil when the value could not be determined.
type AssetRecord struct {
	Filename      string    `json:"filename"`
	Kind          AssetKind `json:"kind"`
	Width         *int      `json:"width"`
	Height        *int      `json:"height"`
	FileSize      int64     `json:"fileSize"`
	Format        string    `json:"format"`
	ColorSpace    *string   `json:"colorSpace"`
	Duration      *float64  `json:"duration"`
	Codec         *string   `json:"codec"`
	ThumbnailPath string    `json:"-"` // empty when no thumbnail exists
	SourcePath    string    `json:"-"`
}

// Resolution returns "WxH", or the placeholder when either dimension is unknown.
func (r AssetRecord) Resolution() string {
	if r.Width == nil || r.Height == nil {
		return Placeholder
	}
	return fmt.Sprintf("%dx%d", *r.Width, *r.Height)
}

// HumanSize returns the file size with binary units.
func (r AssetRecord) HumanSize() string {
	return util.HumanSize(r.FileSize)
}

// DurationLabel returns the duration as "m:ss"; ok is false when unknown.
func (r AssetRecord) DurationLabel() (label string, ok bool) {
	if r.Duration == nil {
		return "", false
	}
	return util.FormatDuration(*r.Duration), true
}

// ColorSpaceLabel returns the color space or the placeholder.
func (r AssetRecord) ColorSpaceLabel() string {
	if r.ColorSpace == nil {
		return Placeholder
	}
	return *r.ColorSpace
}

// Outcome is the result of processing one asset: exactly one of Record or Err is set.
type Outcome struct {
	Asset  DiscoveredAsset
	Record *AssetRecord
	Err    error
}

// OK reports whether the asset produced a record.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Record != nil
}

// Message returns the human-readable failure description, or "" on success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Result summarizes a completed live run.
type Result struct {
	Assets     []DiscoveredAsset
	Records    []AssetRecord
	Errors     []string
	OutputPath string
}

// SortRecords orders records naturally by filename; ties keep a stable order
// by source path.
func SortRecords(records []AssetRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if util.NaturalLess(a.Filename, b.Filename) {
			return true
		}
		if util.NaturalLess(b.Filename, a.Filename) {
			return false
		}
		return a.SourcePath < b.SourcePath
	})
}

// CountKinds returns the number of images and videos in assets.
func CountKinds(assets []DiscoveredAsset) (images, videos int) {
	for _, a := range assets {
		if a.Kind == KindVideo {
			videos++
		} else {
			images++
		}
	}
	return images, videos
}

// --- END OF FINAL REVISED FILE pkg/proof/report.go ---
