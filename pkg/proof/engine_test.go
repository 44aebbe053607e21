// --- START OF FINAL REVISED FILE pkg/proof/engine_test.go ---
package proof_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brandonaviram/proof/internal/testutil"
	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupScenario creates photo1.jpg (valid), photo2.png (corrupt) and clip.mp4.
func setupScenario(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteJPEG(t, filepath.Join(root, "photo1.jpg"), 1920, 1080)
	testutil.CreateDummyFile(t, filepath.Join(root, "photo2.png"), "not really a png")
	testutil.CreateDummyFile(t, filepath.Join(root, "clip.mp4"), "fake video")
	return root
}

func newTestEngine(t *testing.T, opts proof.Options) *proof.Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.DiscardHandler()
	}
	if opts.ToolRunner == nil {
		opts.ToolRunner = probeAndFrameRunner(clipProbeJSON)
	}
	e, err := proof.NewEngine(opts)
	require.NoError(t, err)
	return e
}

func recordNames(records []proof.AssetRecord) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Filename
	}
	return names
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := proof.NewEngine(proof.Options{ToolRunner: new(testutil.MockToolRunner)})
	require.Error(t, err)
	assert.ErrorIs(t, err, proof.ErrConfigValidation)
	assert.Contains(t, err.Error(), "Logger")

	_, err = proof.NewEngine(proof.Options{Logger: testutil.DiscardHandler()})
	require.Error(t, err)
	assert.ErrorIs(t, err, proof.ErrConfigValidation)
	assert.Contains(t, err.Error(), "ToolRunner")

	e, err := proof.NewEngine(proof.Options{Logger: testutil.DiscardHandler(), ToolRunner: new(testutil.MockToolRunner)})
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestEngine_ProcessAll_MixedFolder(t *testing.T) {
	root := setupScenario(t)
	sink := &testutil.RecordingSink{}
	e := newTestEngine(t, proof.Options{InputPath: root, EventSink: sink, Concurrency: 2})

	assets, err := e.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 3)
	images, videos := proof.CountKinds(assets)
	assert.Equal(t, 2, images)
	assert.Equal(t, 1, videos)

	records, errs := e.ProcessAll(context.Background(), assets, t.TempDir(), false, false)
	assert.Equal(t, []string{"clip.mp4", "photo1.jpg"}, recordNames(records))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "photo2.png")

	// Without thumbnails nothing is written.
	for _, r := range records {
		assert.Empty(t, r.ThumbnailPath)
	}
	assert.Len(t, sink.Events(), 6, "one Processing plus one Processed/Failed per asset")
}

func TestEngine_ProcessAll_NaturalOrderRegardlessOfCompletion(t *testing.T) {
	root := t.TempDir()
	for i := 50; i >= 1; i-- {
		testutil.WritePNG(t, filepath.Join(root, fmt.Sprintf("IMG_%d.png", i)), 4, 4)
	}
	e := newTestEngine(t, proof.Options{InputPath: root, Concurrency: 8})

	assets, err := e.Discover(context.Background())
	require.NoError(t, err)
	records, errs := e.ProcessAll(context.Background(), assets, t.TempDir(), true, false)
	require.Empty(t, errs)
	require.Len(t, records, 50)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("IMG_%d.png", i+1), r.Filename)
	}
}

func TestEngine_ProcessAll_PerIndexEventOrder(t *testing.T) {
	root := setupScenario(t)
	sink := &testutil.RecordingSink{}
	e := newTestEngine(t, proof.Options{InputPath: root, EventSink: sink, Concurrency: 3})

	assets, err := e.Discover(context.Background())
	require.NoError(t, err)
	e.ProcessAll(context.Background(), assets, t.TempDir(), true, false)

	started := map[int]bool{}
	finished := map[int]int{}
	for _, ev := range sink.Events() {
		switch ev := ev.(type) {
		case events.Processing:
			assert.False(t, started[ev.Index], "Processing emitted twice for %d", ev.Index)
			started[ev.Index] = true
		case events.Processed:
			assert.True(t, started[ev.Index], "Processed before Processing for %d", ev.Index)
			finished[ev.Index]++
		case events.Failed:
			assert.True(t, started[ev.Index], "Failed before Processing for %d", ev.Index)
			assert.Contains(t, ev.Message, "photo2.png")
			finished[ev.Index]++
		default:
			t.Fatalf("unexpected event %T", ev)
		}
	}
	for _, a := range assets {
		assert.Equal(t, 1, finished[a.Index], "asset %s", a.Filename())
	}
}

func TestEngine_ProcessSequential_Cancelled(t *testing.T) {
	root := setupScenario(t)
	e := newTestEngine(t, proof.Options{InputPath: root})
	assets, err := e.Discover(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records, errs, err := e.ProcessSequential(ctx, assets, t.TempDir(), false, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
	assert.Nil(t, errs)
}

func TestEngine_RunLive_EventSequence(t *testing.T) {
	root := setupScenario(t)
	out := filepath.Join(t.TempDir(), "proof.pdf")
	sink := &testutil.RecordingSink{}
	renderer := new(testutil.MockRenderer)

	var thumbsSeen []string
	renderer.On("Render", mock.Anything, mock.AnythingOfType("proof.RenderRequest")).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(proof.RenderRequest)
			for _, r := range req.Records {
				if r.ThumbnailPath == "" {
					continue
				}
				if _, err := os.Stat(r.ThumbnailPath); err == nil {
					thumbsSeen = append(thumbsSeen, r.Filename)
				}
			}
		}).
		Return(nil)

	e := newTestEngine(t, proof.Options{
		InputPath:  root,
		Client:     "Acme",
		Title:      "Spring Campaign",
		Date:       "2026-03-14",
		Columns:    4,
		OutputPath: out,
		EventSink:  sink,
		Renderer:   renderer,
	})

	res, err := e.RunLive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out, res.OutputPath)
	assert.Len(t, res.Assets, 3)
	assert.Equal(t, []string{"clip.mp4", "photo1.jpg"}, recordNames(res.Records))
	require.Len(t, res.Errors, 1)

	// clip.mp4 gets a frame from the ffmpeg stand-in, photo1.jpg a real thumbnail.
	assert.ElementsMatch(t, []string{"clip.mp4", "photo1.jpg"}, thumbsSeen)
	for _, r := range res.Records {
		if r.ThumbnailPath != "" {
			_, statErr := os.Stat(r.ThumbnailPath)
			assert.True(t, os.IsNotExist(statErr), "thumbnail directory should be removed after the run")
		}
	}

	renderer.AssertCalled(t, "Render", mock.Anything, mock.MatchedBy(func(req proof.RenderRequest) bool {
		return req.Client == "Acme" && req.Title == "Spring Campaign" && req.Date == "2026-03-14" &&
			req.Columns == 4 && req.OutputPath == out && len(req.Records) == 2
	}))

	evs := sink.Events()
	expected := []events.Event{
		events.AssetFound{Filename: "clip.mp4", Kind: "video"},
		events.AssetFound{Filename: "photo1.jpg", Kind: "image"},
		events.AssetFound{Filename: "photo2.png", Kind: "image"},
		events.ScanDone{Total: 3},
		events.Processing{Index: 0},
		events.Processed{Index: 0},
		events.Processing{Index: 1},
		events.Processed{Index: 1},
		events.Processing{Index: 2},
	}
	require.Len(t, evs, len(expected)+3)
	assert.Equal(t, expected, evs[:len(expected)])
	failed, ok := evs[len(expected)].(events.Failed)
	require.True(t, ok)
	assert.Equal(t, 2, failed.Index)
	assert.Contains(t, failed.Message, "photo2.png")
	assert.Equal(t, events.Rendering{}, evs[len(evs)-2])
	assert.Equal(t, events.Done{Output: out, Total: 2}, evs[len(evs)-1])
}

func TestEngine_RunLive_NothingProcessed(t *testing.T) {
	root := t.TempDir()
	testutil.CreateDummyFile(t, filepath.Join(root, "broken.jpg"), "nope")
	sink := &testutil.RecordingSink{}
	renderer := new(testutil.MockRenderer)
	e := newTestEngine(t, proof.Options{InputPath: root, EventSink: sink, Renderer: renderer})

	_, err := e.RunLive(context.Background())
	require.ErrorIs(t, err, proof.ErrNoAssetsProcessed)
	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)

	evs := sink.Events()
	require.NotEmpty(t, evs)
	assert.Equal(t, events.Error{Message: "No assets could be processed"}, evs[len(evs)-1])
	for _, ev := range evs {
		assert.NotEqual(t, events.Rendering{}, ev)
	}
}

func TestEngine_RunLive_DiscoveryFailure(t *testing.T) {
	sink := &testutil.RecordingSink{}
	e := newTestEngine(t, proof.Options{InputPath: t.TempDir(), EventSink: sink})

	_, err := e.RunLive(context.Background())
	require.ErrorIs(t, err, proof.ErrNoSupportedAssets)
	evs := sink.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.Error{Message: err.Error()}, evs[0])
}

func TestEngine_RunLive_RenderFailure(t *testing.T) {
	root := setupScenario(t)
	sink := &testutil.RecordingSink{}
	renderer := new(testutil.MockRenderer)
	renderErr := proof.WithKind(proof.ErrRenderFailed, "typst compile failed (exit code: 1)", errors.New("exit status 1"))
	renderer.On("Render", mock.Anything, mock.Anything).Return(renderErr)
	e := newTestEngine(t, proof.Options{InputPath: root, EventSink: sink, Renderer: renderer})

	res, err := e.RunLive(context.Background())
	require.ErrorIs(t, err, proof.ErrRenderFailed)
	assert.Empty(t, res.OutputPath)
	evs := sink.Events()
	assert.Equal(t, events.Rendering{}, evs[len(evs)-2])
	assert.Equal(t, events.Error{Message: "typst compile failed (exit code: 1)"}, evs[len(evs)-1])
}

func TestEngine_RunLive_Cancelled(t *testing.T) {
	root := setupScenario(t)
	sink := &testutil.RecordingSink{}
	e := newTestEngine(t, proof.Options{InputPath: root, EventSink: sink})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RunLive(ctx)
	require.ErrorIs(t, err, context.Canceled)
	evs := sink.Events()
	require.NotEmpty(t, evs)
	_, isErr := evs[len(evs)-1].(events.Error)
	assert.True(t, isErr)
}

func TestEngine_Render(t *testing.T) {
	renderer := new(testutil.MockRenderer)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(req proof.RenderRequest) bool {
		return req.Client == "Delivery" && req.Columns == 5 && len(req.Records) == 1
	})).Return(nil).Once()
	e := newTestEngine(t, proof.Options{Client: "Delivery", Columns: 5, Renderer: renderer})

	require.NoError(t, e.Render(context.Background(), []proof.AssetRecord{{Filename: "a.jpg"}}))
	renderer.AssertExpectations(t)
}

// --- END OF FINAL REVISED FILE pkg/proof/engine_test.go ---
