// --- START OF FINAL REVISED FILE internal/cli/ui/reducer.go ---
package ui

import (
	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/events"
)

// Phase is the dashboard's top-level activity.
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseProcessing
	PhaseRendering
	PhaseComplete
	PhaseFailed
)

var phaseNames = [...]string{"Scanning", "Processing", "Rendering", "Complete", "Failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether no further events are applied in p.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Entry is the dashboard row for one asset, keyed by its position.
type Entry struct {
	Filename string
	Kind     string
	Status   proof.Status
	Message  string // failure message
}

// State is everything the dashboard draws. It is only mutated through
// Reduce and ApplyInput.
type State struct {
	Phase        Phase
	Entries      []Entry
	TotalFound   int
	Processed    int // includes failures
	Failed       int
	Output       string
	ErrorMessage string
	Scroll       int
	Tick         int

	// Header fields.
	Client  string
	Date    string
	Columns int
}

// NewState returns the initial Scanning state.
func NewState(client, date string, columns int) State {
	return State{Phase: PhaseScanning, Client: client, Date: date, Columns: columns}
}

// Reduce folds one event into s. Events outside the transition table and any
// event after a terminal phase leave s unchanged. s.Entries is never modified
// in place.
func Reduce(s State, ev events.Event) State {
	r := reducer{s: s}
	r.apply(ev)
	return r.s
}

// ReduceAll folds evs into s in order, with the same result as calling Reduce
// for each event. The entry slice is copied at most once per call.
func ReduceAll(s State, evs []events.Event) State {
	r := reducer{s: s}
	for _, ev := range evs {
		r.apply(ev)
	}
	return r.s
}

type reducer struct {
	s     State
	owned bool // s.Entries is private to this reducer
}

// own gives the reducer a private copy of the entries before its first write.
func (r *reducer) own() {
	if r.owned {
		return
	}
	r.s.Entries = append([]Entry(nil), r.s.Entries...)
	r.owned = true
}

func (r *reducer) apply(ev events.Event) {
	s := &r.s
	if s.Phase.Terminal() {
		return
	}
	if e, ok := ev.(events.Error); ok {
		s.Phase = PhaseFailed
		s.ErrorMessage = e.Message
		return
	}

	switch s.Phase {
	case PhaseScanning:
		switch e := ev.(type) {
		case events.AssetFound:
			r.own()
			s.Entries = append(s.Entries, Entry{Filename: e.Filename, Kind: e.Kind, Status: proof.StatusPending})
			s.TotalFound = len(s.Entries)
		case events.ScanDone:
			s.TotalFound = e.Total
			s.Phase = PhaseProcessing
		}
	case PhaseProcessing:
		switch e := ev.(type) {
		case events.Processing:
			r.setStatus(e.Index, proof.StatusProcessing, "")
		case events.Processed:
			if r.setStatus(e.Index, proof.StatusDone, "") {
				s.Processed++
			}
		case events.Failed:
			if r.setStatus(e.Index, proof.StatusFailed, e.Message) {
				s.Processed++
				s.Failed++
			}
		case events.Rendering:
			s.Phase = PhaseRendering
		}
	case PhaseRendering:
		if e, ok := ev.(events.Done); ok {
			s.Phase = PhaseComplete
			s.Output = e.Output
			s.Processed = e.Total
		}
	}
}

// setStatus updates row i and reports whether i named a row.
func (r *reducer) setStatus(i int, status proof.Status, msg string) bool {
	if i < 0 || i >= len(r.s.Entries) {
		return false
	}
	r.own()
	r.s.Entries[i].Status = status
	r.s.Entries[i].Message = msg
	return true
}

// Input is a local user action.
type Input int

const (
	InputNone Input = iota
	InputScrollUp
	InputScrollDown
	InputQuit
	InputConfirm
)

// ApplyInput applies a user action. quit is true when the dashboard should
// exit: always for InputQuit, and for InputConfirm only in a terminal phase.
func ApplyInput(s State, in Input, visibleRows int) (next State, quit bool) {
	maxScroll := len(s.Entries) - visibleRows
	if maxScroll < 0 {
		maxScroll = 0
	}
	switch in {
	case InputScrollDown:
		s.Scroll++
	case InputScrollUp:
		s.Scroll--
	case InputQuit:
		return s, true
	case InputConfirm:
		return s, s.Phase.Terminal()
	}
	if s.Scroll > maxScroll {
		s.Scroll = maxScroll
	}
	if s.Scroll < 0 {
		s.Scroll = 0
	}
	return s, false
}

// --- END OF FINAL REVISED FILE internal/cli/ui/reducer.go ---
