// --- START OF FINAL REVISED FILE internal/cli/ui/model.go ---
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/events"
)

// tickMsg drives the fixed-rate redraw loop.
type tickMsg time.Time

// Model is the bubbletea adapter around State. All state changes go through
// Reduce and ApplyInput; Model only adds the tick loop and terminal sizing.
type Model struct {
	state       State
	queue       *events.Queue
	keys        KeyMap
	layout      Layout
	initialized bool
	quitting    bool
	cancelled   bool
	cancel      func()
}

// NewModel creates the dashboard model. queue is drained on every tick;
// cancel (optional) is called when the user quits before a terminal phase.
func NewModel(queue *events.Queue, initial State, cancel func()) *Model {
	if cancel == nil {
		cancel = func() {}
	}
	return &Model{
		state:  initial,
		queue:  queue,
		keys:   DefaultKeyMap(),
		cancel: cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(proof.TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the redraw loop.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update handles terminal resizes, key presses and ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = Layout{Width: msg.Width, Height: msg.Height}
		m.initialized = true
		// Re-clamp the scroll offset for the new height.
		m.state, _ = ApplyInput(m.state, InputNone, VisibleRows(m.layout))

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		var quit bool
		m.state, quit = ApplyInput(m.state, m.keys.InputFor(msg), VisibleRows(m.layout))
		if quit {
			m.quitting = true
			if !m.state.Phase.Terminal() {
				m.cancelled = true
				m.cancel()
			}
			return m, tea.Quit
		}

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.drain()
		m.state.Tick++
		return m, tick()
	}
	return m, nil
}

// drain folds every queued event into the state.
func (m *Model) drain() {
	if m.queue == nil {
		return
	}
	m.state = ReduceAll(m.state, m.queue.Drain())
}

// View renders the current frame.
func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}
	if !m.initialized {
		return "Initializing..."
	}
	return Render(m.state, m.layout)
}

// State returns the current dashboard state.
func (m *Model) State() State { return m.state }

// Cancelled reports whether the user quit before the run finished.
func (m *Model) Cancelled() bool { return m.cancelled }

// --- END OF FINAL REVISED FILE internal/cli/ui/model.go ---
