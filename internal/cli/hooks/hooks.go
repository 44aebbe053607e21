// --- START OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
package hooks

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/events"
)

// CLIHooks implements events.Sink, bridging engine events to the CLI's
// output layer (dashboard queue, logger or progress bar).
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiSink        events.Sink // dashboard queue
	progressBar    ProgressBar // nil when no bar is shown
	stderr         io.Writer
	mu             sync.Mutex // protects progressBar and names
	names          map[int]string
}

// ProgressBar is the subset of progressbar.ProgressBar the hooks drive.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Finish() error
}

// NewCLIHooks creates a new CLIHooks instance.
// tuiSink is required when tuiEnabled is set; progBar may be nil.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiSink events.Sink, progBar ProgressBar, stderr io.Writer) *CLIHooks {
	if tuiSink == nil {
		tuiSink = events.NoOpSink{}
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &CLIHooks{
		logger:         logger.With(slog.String("component", "hooks")),
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiSink:        tuiSink,
		progressBar:    progBar,
		stderr:         stderr,
		names:          make(map[int]string),
	}
}

// Track registers asset names so index-only events can be logged by path.
func (h *CLIHooks) Track(assets []proof.DiscoveredAsset) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, a := range assets {
		h.names[a.Index] = a.Path
	}
}

func (h *CLIHooks) name(index int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n, ok := h.names[index]; ok {
		return n
	}
	return fmt.Sprintf("#%d", index)
}

// Send implements events.Sink. It MUST be safe for concurrent use.
func (h *CLIHooks) Send(ev events.Event) {
	if h.tuiEnabled {
		h.tuiSink.Send(ev)
		return
	}
	if h.verboseEnabled {
		h.logEvent(ev)
		return
	}
	h.advanceProgress(ev)
	// The run prints every failure once it finishes.
	if f, ok := ev.(events.Failed); ok {
		h.logger.Debug("Asset processing failed", slog.String("path", h.name(f.Index)), slog.String("error", f.Message))
	}
}

// logEvent writes one record per event; level reflects severity.
func (h *CLIHooks) logEvent(ev events.Event) {
	switch ev := ev.(type) {
	case events.AssetFound:
		h.logger.Debug("Asset discovered", slog.String("filename", ev.Filename), slog.String("kind", ev.Kind))
	case events.ScanDone:
		h.logger.Info("Scan complete", slog.Int("total", ev.Total))
	case events.Processing:
		h.logger.Debug("Asset status updated", slog.String("path", h.name(ev.Index)), slog.String("status", string(proof.StatusProcessing)))
	case events.Processed:
		h.logger.Info("Asset status updated", slog.String("path", h.name(ev.Index)), slog.String("status", string(proof.StatusDone)))
	case events.Failed:
		h.logger.Error("Asset processing failed", slog.String("path", h.name(ev.Index)), slog.String("status", string(proof.StatusFailed)), slog.String("error", ev.Message))
	case events.Rendering:
		h.logger.Info("Rendering document")
	case events.Done:
		h.logger.Info("Run complete", slog.String("output", ev.Output), slog.Int("total", ev.Total))
	case events.Error:
		h.logger.Error("Run failed", slog.String("error", ev.Message))
	}
}

func (h *CLIHooks) advanceProgress(ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progressBar == nil {
		return
	}
	switch ev.(type) {
	case events.Processed, events.Failed:
		_ = h.progressBar.Add(1)
	case events.Rendering:
		h.progressBar.Describe("Rendering PDF...")
	case events.Done, events.Error:
		h.finishLocked()
	}
}

// Finish completes the progress bar, if any. Safe to call more than once.
func (h *CLIHooks) Finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finishLocked()
}

func (h *CLIHooks) finishLocked() {
	if h.progressBar == nil {
		return
	}
	_ = h.progressBar.Finish()
	h.progressBar = nil
	// Keep the next line of output off the bar.
	_, _ = fmt.Fprintln(h.stderr)
}

// --- END OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
