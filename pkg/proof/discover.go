// --- START OF FINAL REVISED FILE pkg/proof/discover.go ---
package proof

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brandonaviram/proof/pkg/util"
)

// Walker traverses the input directory, applies hidden-entry and ignore rules,
// and collects supported assets.
type Walker struct {
	root          string
	logger        *slog.Logger
	ignoreMatcher *ignoreMatcher
}

// NewWalker creates a Walker for root. ignorePatterns are gitignore-style globs
// relative to root; patterns from root/.proofignore are added automatically.
func NewWalker(root string, ignorePatterns []string, loggerHandler slog.Handler) (*Walker, error) { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "walker"))
	// .proofignore lives inside root, so root must be a directory first.
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", ErrNotADirectory, root)
	}
	matcher, err := newIgnoreMatcher(root, ignorePatterns, logger)
	if err != nil {
		logger.Error("Failed to initialize ignore pattern matcher", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to initialize ignore patterns: %w", err)
	}
	logger.Debug("Ignore patterns loaded", slog.Int("count", matcher.patternCount()))
	return &Walker{root: root, logger: logger, ignoreMatcher: matcher}, nil
}

// Discover finds all supported assets under root with no extra ignore patterns.
func Discover(root string) ([]DiscoveredAsset, error) {
	w, err := NewWalker(root, nil, nil)
	if err != nil {
		return nil, err
	}
	return w.Discover(context.Background())
}

// Discover walks the tree and returns supported assets in natural filename
// order (ties broken by full path) with dense zero-based indices.
// It fails with ErrNotADirectory or ErrNoSupportedAssets.
func (w *Walker) Discover(ctx context.Context) ([]DiscoveredAsset, error) {
	info, err := os.Stat(w.root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", ErrNotADirectory, w.root)
	}

	w.logger.Debug("Starting directory walk", slog.String("path", w.root))
	var found []DiscoveredAsset
	walkErr := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return fmt.Errorf("%w: cannot read '%s': %w", ErrNotADirectory, path, err)
			}
			w.logger.Warn("Error accessing path during walk", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == w.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			w.logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}
		relativePath, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			w.logger.Warn("Could not calculate relative path", slog.String("path", path), slog.String("error", relErr.Error()))
			return nil
		}
		relativePath = filepath.ToSlash(relativePath)
		if w.ignoreMatcher.Match(relativePath, d.IsDir()) {
			w.logger.Debug("Path ignored", slog.String("path", relativePath), slog.String("pattern", w.ignoreMatcher.LastMatchPattern(relativePath, d.IsDir())))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		kind, ok := ClassifyPath(path)
		if !ok {
			return nil
		}
		found = append(found, DiscoveredAsset{Path: path, Kind: kind})
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			w.logger.Info("Directory walk cancelled", slog.String("reason", walkErr.Error()))
			return nil, walkErr
		}
		w.logger.Error("Directory walk failed", slog.String("error", walkErr.Error()))
		return nil, walkErr
	}

	sortAssets(found)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w in '%s'", ErrNoSupportedAssets, w.root)
	}
	for i := range found {
		found[i].Index = i
	}
	w.logger.Debug("Directory walk completed", slog.Int("assets", len(found)))
	return found, nil
}

// sortAssets orders by natural filename comparison, then by full path.
func sortAssets(assets []DiscoveredAsset) {
	sort.SliceStable(assets, func(i, j int) bool {
		a, b := assets[i].Filename(), assets[j].Filename()
		if util.NaturalLess(a, b) {
			return true
		}
		if util.NaturalLess(b, a) {
			return false
		}
		return assets[i].Path < assets[j].Path
	})
}

// --- ignoreMatcher ---

type ignoreMatcher struct {
	patterns []ignorePattern
	logger   *slog.Logger
}

type ignorePattern struct {
	pattern     string // cleaned, '/'-separated
	origPattern string
	negated     bool
	isDirOnly   bool
	isRooted    bool
}

// newIgnoreMatcher loads root/.proofignore (if present) followed by configPatterns.
func newIgnoreMatcher(root string, configPatterns []string, logger *slog.Logger) (*ignoreMatcher, error) { // minimal comment
	matcher := &ignoreMatcher{logger: logger.With(slog.String("component", "ignoreMatcher"))}
	ignoreFilePath := filepath.Join(root, IgnoreFileName)
	filePatterns, err := loadPatternsFromFile(ignoreFilePath)
	switch {
	case err == nil:
		matcher.addPatterns(filePatterns)
		matcher.logger.Debug("Loaded patterns from ignore file", slog.String("path", ignoreFilePath), slog.Int("count", len(filePatterns)))
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to load ignore file %s: %w", ignoreFilePath, err)
	}
	matcher.addPatterns(configPatterns)
	return matcher, nil
}

// loadPatternsFromFile reads an ignore file, skipping blanks and '#' comments.
func loadPatternsFromFile(filePath string) ([]string, error) { // minimal comment
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file %s: %w", filePath, err)
	}
	return patterns, nil
}

func (m *ignoreMatcher) addPatterns(rawPatterns []string) {
	for _, raw := range rawPatterns {
		p := ignorePattern{origPattern: raw}
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "!") {
			p.negated = true
			trimmed = trimmed[1:]
		}
		if strings.HasPrefix(trimmed, "/") {
			p.isRooted = true
			trimmed = strings.TrimPrefix(trimmed, "/")
		}
		if strings.HasSuffix(trimmed, "/") {
			p.isDirOnly = true
			trimmed = strings.TrimSuffix(trimmed, "/")
		}
		p.pattern = filepath.ToSlash(trimmed)
		if p.pattern == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
}

// Match reports whether relativePath is ignored. The last matching pattern wins.
func (m *ignoreMatcher) Match(relativePath string, isDir bool) bool {
	_, ignored := m.lastMatch(relativePath, isDir)
	return ignored
}

// LastMatchPattern returns the pattern that caused relativePath to be ignored, or "".
func (m *ignoreMatcher) LastMatchPattern(relativePath string, isDir bool) string {
	pattern, ignored := m.lastMatch(relativePath, isDir)
	if !ignored {
		return ""
	}
	return pattern
}

func (m *ignoreMatcher) lastMatch(relativePath string, isDir bool) (string, bool) {
	lastPattern, ignored := "", false
	for _, p := range m.patterns {
		if p.isDirOnly && !isDir {
			continue
		}
		if util.MatchesPattern(p.pattern, relativePath, p.isRooted) {
			lastPattern = p.origPattern
			ignored = !p.negated
		}
	}
	return lastPattern, ignored
}

func (m *ignoreMatcher) patternCount() int {
	return len(m.patterns)
}

// --- END OF FINAL REVISED FILE pkg/proof/discover.go ---
