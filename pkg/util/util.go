// --- START OF FINAL REVISED FILE pkg/util/util.go ---
package util

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/maruel/natural"
	"golang.org/x/text/unicode/norm"
)

// NaturalLess reports whether a sorts before b when digit runs are compared
// numerically ("IMG_2" < "IMG_10"). Both strings are NFC-normalized first so
// that filenames produced by macOS (NFD) and other systems compare equally.
func NaturalLess(a, b string) bool {
	return natural.Less(norm.NFC.String(a), norm.NFC.String(b))
}

// FormatDuration renders a duration in seconds as "m:ss".
// Minutes and seconds are both floored; negative and NaN inputs render as "0:00".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	mins := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// HumanSize renders a byte count with binary units (e.g. "1.5 MiB").
func HumanSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// Slugify lowercases s and replaces each space with '-'.
func Slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// MatchesPattern checks if a path relative to the walk root matches a gitignore-style pattern.
// Note: This is a simplified implementation using filepath.Match; "**" is not expanded.
func MatchesPattern(pattern, pathRel string, isRooted bool) bool {
	pattern = filepath.ToSlash(pattern)
	pathRel = filepath.ToSlash(pathRel)
	if pattern == "" || pathRel == "" || pathRel == "." {
		return false
	}
	if match, _ := filepath.Match(pattern, pathRel); match {
		return true
	}
	if isRooted {
		return false
	}
	// Unrooted patterns may match any trailing run of path segments.
	parts := strings.Split(pathRel, "/")
	for i := 1; i < len(parts); i++ {
		if match, _ := filepath.Match(pattern, strings.Join(parts[i:], "/")); match {
			return true
		}
	}
	return false
}

// --- END OF FINAL REVISED FILE pkg/util/util.go ---
