// --- START OF FINAL REVISED FILE internal/cli/ui/keys.go ---
package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Quit    key.Binding
	Confirm key.Binding
	Up      key.Binding
	Down    key.Binding
}

// DefaultKeyMap returns the default dashboard key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "exit"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
	}
}

// InputFor maps a key press to a dashboard input.
func (k KeyMap) InputFor(msg tea.KeyMsg) Input {
	switch {
	case key.Matches(msg, k.Quit):
		return InputQuit
	case key.Matches(msg, k.Confirm):
		return InputConfirm
	case key.Matches(msg, k.Down):
		return InputScrollDown
	case key.Matches(msg, k.Up):
		return InputScrollUp
	default:
		return InputNone
	}
}

// --- END OF FINAL REVISED FILE internal/cli/ui/keys.go ---
