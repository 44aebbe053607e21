// --- START OF FINAL REVISED FILE internal/testutil/mocks.go ---
// Package testutil provides fixtures and mock implementations for interfaces
// defined in the proof core library (pkg/proof and subpackages).
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/events"
	"github.com/stretchr/testify/mock"
)

// DiscardHandler returns a slog handler that drops everything.
func DiscardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

// MockToolRunner provides a mock implementation of proof.ToolRunner.
// Expectations match on the executable name and the full ToolCommand.
type MockToolRunner struct {
	mock.Mock
}

// Run mocks the Run method.
func (m *MockToolRunner) Run(ctx context.Context, cmd proof.ToolCommand) (proof.ToolResult, error) {
	args := m.Called(ctx, cmd)
	res, _ := args.Get(0).(proof.ToolResult)
	return res, args.Error(1)
}

// ToolNamed matches a ToolCommand by executable name.
func ToolNamed(name string) interface{} {
	return mock.MatchedBy(func(cmd proof.ToolCommand) bool { return cmd.Name == name })
}

// ToolNamedWithArg matches a ToolCommand by executable name and one argument.
func ToolNamedWithArg(name, arg string) interface{} {
	return mock.MatchedBy(func(cmd proof.ToolCommand) bool {
		if cmd.Name != name {
			return false
		}
		for _, a := range cmd.Args {
			if a == arg {
				return true
			}
		}
		return false
	})
}

// WriteLastArg is a Run callback that creates the file named by the command's
// final argument, standing in for ffmpeg writing a frame.
func WriteLastArg(args mock.Arguments) {
	cmd := args.Get(1).(proof.ToolCommand)
	if len(cmd.Args) == 0 {
		return
	}
	_ = os.WriteFile(cmd.Args[len(cmd.Args)-1], []byte("frame"), 0644)
}

// MockSink provides a mock implementation of events.Sink.
type MockSink struct {
	mock.Mock
}

// Send mocks the Send method.
func (m *MockSink) Send(ev events.Event) {
	m.Called(ev)
}

// RecordingSink records every event in send order. Safe for concurrent use.
type RecordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

// Send implements events.Sink.
func (s *RecordingSink) Send(ev events.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.events...)
}

// MockMetadataCache provides a mock implementation of proof.MetadataCache.
type MockMetadataCache struct {
	mock.Mock
}

// Lookup mocks the Lookup method.
func (m *MockMetadataCache) Lookup(path string, size int64, modTime time.Time) (proof.CachedMetadata, bool) {
	args := m.Called(path, size, modTime)
	meta, _ := args.Get(0).(proof.CachedMetadata)
	return meta, args.Bool(1)
}

// Store mocks the Store method.
func (m *MockMetadataCache) Store(path string, size int64, modTime time.Time, meta proof.CachedMetadata) error {
	args := m.Called(path, size, modTime, meta)
	return args.Error(0)
}

// MockRenderer provides a mock implementation of proof.DocumentRenderer.
type MockRenderer struct {
	mock.Mock
}

// Render mocks the Render method.
func (m *MockRenderer) Render(ctx context.Context, req proof.RenderRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// --- END OF FINAL REVISED FILE internal/testutil/mocks.go ---
