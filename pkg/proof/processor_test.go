// --- START OF FINAL REVISED FILE pkg/proof/processor_test.go ---
package proof_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/brandonaviram/proof/internal/testutil"
	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const clipProbeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720}
  ],
  "format": {"filename": "clip.mp4", "duration": "12.5"}
}`

func newProcessor(runner proof.ToolRunner, cache proof.MetadataCache) *proof.Processor {
	return proof.NewProcessor(testutil.DiscardHandler(), runner, cache, proof.ToolPaths{})
}

// probeAndFrameRunner answers ffprobe with probeJSON and makes ffmpeg write its output file.
func probeAndFrameRunner(probeJSON string) *testutil.MockToolRunner {
	runner := new(testutil.MockToolRunner)
	runner.On("Run", mock.Anything, testutil.ToolNamed("ffprobe")).Return(proof.ToolResult{Stdout: []byte(probeJSON)}, nil)
	runner.On("Run", mock.Anything, testutil.ToolNamed("ffmpeg")).Run(testutil.WriteLastArg).Return(proof.ToolResult{}, nil)
	return runner
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProcessOne_ImageWithThumbnail(t *testing.T) {
	root, work := t.TempDir(), t.TempDir()
	src := filepath.Join(root, "photo1.jpg")
	testutil.WriteJPEG(t, src, 1920, 1080)

	p := newProcessor(new(testutil.MockToolRunner), nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage, Index: 0}, work, true, false)

	require.True(t, out.OK(), out.Message())
	rec := out.Record
	assert.Equal(t, "photo1.jpg", rec.Filename)
	assert.Equal(t, proof.KindImage, rec.Kind)
	assert.Equal(t, "JPG", rec.Format)
	assert.Equal(t, "1920x1080", rec.Resolution())
	assert.Equal(t, filepath.Join(work, "0000.jpg"), rec.ThumbnailPath)
	assert.Nil(t, rec.ColorSpace)
	assert.Nil(t, rec.Duration)

	info, err := os.Stat(src)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), rec.FileSize)

	w, h := decodeSize(t, rec.ThumbnailPath)
	assert.Equal(t, 300, w)
	assert.InDelta(t, 169, h, 1)
}

func TestProcessOne_ThumbnailNamingUsesIndex(t *testing.T) {
	root, work := t.TempDir(), t.TempDir()
	src := filepath.Join(root, "small.png")
	testutil.WritePNG(t, src, 64, 32)

	p := newProcessor(new(testutil.MockToolRunner), nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage, Index: 12}, work, true, false)
	require.True(t, out.OK(), out.Message())
	assert.Equal(t, filepath.Join(work, "0012.jpg"), out.Record.ThumbnailPath)

	// Images already inside the bounding box are not upscaled.
	w, h := decodeSize(t, out.Record.ThumbnailPath)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestProcessOne_ImageWithoutThumbnailReadsHeaderOnly(t *testing.T) {
	root, work := t.TempDir(), t.TempDir()
	src := filepath.Join(root, "wide.png")
	testutil.WritePNG(t, src, 120, 40)

	p := newProcessor(new(testutil.MockToolRunner), nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage, Index: 3}, work, false, false)
	require.True(t, out.OK(), out.Message())
	assert.Equal(t, "120x40", out.Record.Resolution())
	assert.Equal(t, "PNG", out.Record.Format)
	assert.Empty(t, out.Record.ThumbnailPath)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries, "no thumbnail should be written")
}

func TestProcessOne_CorruptImageFails(t *testing.T) {
	root, work := t.TempDir(), t.TempDir()
	src := filepath.Join(root, "photo2.png")
	testutil.CreateDummyFile(t, src, "definitely not a png")
	p := newProcessor(new(testutil.MockToolRunner), nil)

	for _, thumbs := range []bool{true, false} {
		out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage}, work, thumbs, false)
		require.False(t, out.OK())
		assert.Nil(t, out.Record)
		assert.ErrorIs(t, out.Err, proof.ErrDecodeFailed)
		assert.Contains(t, out.Message(), "photo2.png")
	}
}

func TestProcessOne_MissingFileFailsWithStatError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.jpg")
	p := newProcessor(new(testutil.MockToolRunner), nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: missing, Kind: proof.KindImage}, t.TempDir(), true, false)

	require.False(t, out.OK())
	assert.ErrorIs(t, out.Err, proof.ErrStatFailed)
	assert.ErrorIs(t, out.Err, os.ErrNotExist)
	assert.Contains(t, out.Message(), "cannot stat")
	assert.Contains(t, out.Message(), missing)
}

func TestProcessOne_Orientation(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "portrait.jpg")
	testutil.WriteJPEGWithEXIF(t, src, 40, 20, 6, 0)
	p := newProcessor(new(testutil.MockToolRunner), nil)
	asset := proof.DiscoveredAsset{Path: src, Kind: proof.KindImage}

	t.Run("Auto-orient rotates before measuring", func(t *testing.T) {
		out := p.ProcessOne(context.Background(), asset, t.TempDir(), true, true)
		require.True(t, out.OK(), out.Message())
		assert.Equal(t, "20x40", out.Record.Resolution())
	})

	t.Run("Without auto-orient stored dimensions are kept", func(t *testing.T) {
		out := p.ProcessOne(context.Background(), asset, t.TempDir(), true, false)
		require.True(t, out.OK(), out.Message())
		assert.Equal(t, "40x20", out.Record.Resolution())
	})

	t.Run("Header-only mode ignores orientation", func(t *testing.T) {
		out := p.ProcessOne(context.Background(), asset, t.TempDir(), false, true)
		require.True(t, out.OK(), out.Message())
		assert.Equal(t, "40x20", out.Record.Resolution())
	})
}

func TestProcessOne_ColorSpace(t *testing.T) {
	testCases := []struct {
		name     string
		value    uint16
		expected string
	}{
		{"sRGB", 1, "sRGB"},
		{"Adobe RGB", 2, "Adobe RGB"},
		{"Uncalibrated", 65535, "Uncalibrated"},
		{"Unknown value", 3, "Unknown (3)"},
	}
	p := newProcessor(new(testutil.MockToolRunner), nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "cs.jpg")
			testutil.WriteJPEGWithEXIF(t, src, 16, 16, 0, tc.value)
			for _, thumbs := range []bool{true, false} {
				out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage}, t.TempDir(), thumbs, false)
				require.True(t, out.OK(), out.Message())
				require.NotNil(t, out.Record.ColorSpace)
				assert.Equal(t, tc.expected, *out.Record.ColorSpace)
			}
		})
	}
}

func TestProcessOne_VideoProbeAndFrame(t *testing.T) {
	root, work := t.TempDir(), t.TempDir()
	src := filepath.Join(root, "clip.mp4")
	testutil.CreateDummyFile(t, src, "fake video bytes")
	runner := probeAndFrameRunner(clipProbeJSON)

	p := newProcessor(runner, nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo, Index: 2}, work, true, false)

	require.True(t, out.OK(), out.Message())
	rec := out.Record
	assert.Equal(t, proof.KindVideo, rec.Kind)
	assert.Equal(t, "MP4", rec.Format)
	assert.Equal(t, "1280x720", rec.Resolution())
	require.NotNil(t, rec.Codec)
	assert.Equal(t, "h264", *rec.Codec)
	label, ok := rec.DurationLabel()
	require.True(t, ok)
	assert.Equal(t, "0:12", label)
	assert.Equal(t, filepath.Join(work, "0002.jpg"), rec.ThumbnailPath)

	runner.AssertCalled(t, "Run", mock.Anything, proof.ToolCommand{
		Name: "ffprobe",
		Args: []string{"-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", src},
	})
	runner.AssertCalled(t, "Run", mock.Anything, proof.ToolCommand{
		Name: "ffmpeg",
		Args: []string{"-y", "-ss", "1", "-i", src, "-frames:v", "1", "-vf", "scale=300:-1", filepath.Join(work, "0002.jpg")},
	})
}

func TestProcessOne_VideoToolFailuresOnlyLeaveFieldsAbsent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mov")
	testutil.CreateDummyFile(t, src, "x")
	runner := new(testutil.MockToolRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(proof.ToolResult{}, proof.ErrToolNotFound)

	p := newProcessor(runner, nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}, t.TempDir(), true, false)

	require.True(t, out.OK(), "video tool failures must not fail the item")
	rec := out.Record
	assert.Nil(t, rec.Width)
	assert.Nil(t, rec.Height)
	assert.Nil(t, rec.Codec)
	assert.Nil(t, rec.Duration)
	assert.Empty(t, rec.ThumbnailPath)
	assert.Equal(t, proof.Placeholder, rec.Resolution())
}

func TestProcessOne_VideoPartialProbe(t *testing.T) {
	src := filepath.Join(t.TempDir(), "audio-only.mxf")
	testutil.CreateDummyFile(t, src, "x")
	runner := new(testutil.MockToolRunner)
	runner.On("Run", mock.Anything, testutil.ToolNamed("ffprobe")).
		Return(proof.ToolResult{Stdout: []byte(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"n/a"}}`)}, nil)
	// ffmpeg "succeeds" without writing a file.
	runner.On("Run", mock.Anything, testutil.ToolNamed("ffmpeg")).Return(proof.ToolResult{}, nil)

	p := newProcessor(runner, nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}, t.TempDir(), true, false)
	require.True(t, out.OK())
	assert.Nil(t, out.Record.Width)
	assert.Nil(t, out.Record.Duration)
	assert.Empty(t, out.Record.ThumbnailPath)
}

func TestProcessOne_VideoManifestModeSkipsFrame(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	testutil.CreateDummyFile(t, src, "x")
	runner := new(testutil.MockToolRunner)
	runner.On("Run", mock.Anything, testutil.ToolNamed("ffprobe")).Return(proof.ToolResult{Stdout: []byte(clipProbeJSON)}, nil)

	p := newProcessor(runner, nil)
	out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}, t.TempDir(), false, false)
	require.True(t, out.OK())
	assert.Equal(t, "1280x720", out.Record.Resolution())
	runner.AssertNotCalled(t, "Run", mock.Anything, testutil.ToolNamed("ffmpeg"))
}

func TestProcessOne_MetadataCache(t *testing.T) {
	t.Run("Video hit skips ffprobe", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "clip.mp4")
		testutil.CreateDummyFile(t, src, "x")
		w, h, d := 3840, 2160, 75.9
		codec := "prores"
		cache := new(testutil.MockMetadataCache)
		cache.On("Lookup", src, int64(1), mock.AnythingOfType("time.Time")).
			Return(proof.CachedMetadata{Width: &w, Height: &h, Duration: &d, Codec: &codec}, true)
		runner := new(testutil.MockToolRunner)

		p := newProcessor(runner, cache)
		out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}, t.TempDir(), false, false)
		require.True(t, out.OK())
		assert.Equal(t, "3840x2160", out.Record.Resolution())
		label, _ := out.Record.DurationLabel()
		assert.Equal(t, "1:15", label)
		runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Video miss probes and stores", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "clip.mp4")
		testutil.CreateDummyFile(t, src, "x")
		cache := new(testutil.MockMetadataCache)
		cache.On("Lookup", src, int64(1), mock.AnythingOfType("time.Time")).Return(proof.CachedMetadata{}, false)
		cache.On("Store", src, int64(1), mock.AnythingOfType("time.Time"), mock.MatchedBy(func(m proof.CachedMetadata) bool {
			return m.Width != nil && *m.Width == 1280 && m.Codec != nil && *m.Codec == "h264"
		})).Return(errors.New("disk full")).Once()
		runner := probeAndFrameRunner(clipProbeJSON)

		p := newProcessor(runner, cache)
		out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}, t.TempDir(), false, false)
		require.True(t, out.OK(), "cache store errors must not fail the item")
		assert.Equal(t, "1280x720", out.Record.Resolution())
		cache.AssertExpectations(t)
	})

	t.Run("Video tool failure is not stored", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "clip.mp4")
		testutil.CreateDummyFile(t, src, "x")
		cache := new(testutil.MockMetadataCache)
		cache.On("Lookup", src, int64(1), mock.AnythingOfType("time.Time")).Return(proof.CachedMetadata{}, false)
		runner := new(testutil.MockToolRunner)
		runner.On("Run", mock.Anything, testutil.ToolNamed("ffprobe")).Return(proof.ToolResult{}, proof.ErrToolNotFound)

		p := newProcessor(runner, cache)
		out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}, t.TempDir(), false, false)
		require.True(t, out.OK())
		cache.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Image header-only hit", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "still.png")
		testutil.WritePNG(t, src, 10, 10)
		w, h := 4000, 3000
		cs := "Adobe RGB"
		cache := new(testutil.MockMetadataCache)
		cache.On("Lookup", src, mock.AnythingOfType("int64"), mock.AnythingOfType("time.Time")).
			Return(proof.CachedMetadata{Width: &w, Height: &h, ColorSpace: &cs}, true)

		p := newProcessor(new(testutil.MockToolRunner), cache)
		out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage}, t.TempDir(), false, false)
		require.True(t, out.OK())
		assert.Equal(t, "4000x3000", out.Record.Resolution())
		assert.Equal(t, "Adobe RGB", out.Record.ColorSpaceLabel())
	})

	t.Run("Thumbnail mode always decodes", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "still.png")
		testutil.WritePNG(t, src, 10, 10)
		cache := new(testutil.MockMetadataCache)

		p := newProcessor(new(testutil.MockToolRunner), cache)
		out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage}, t.TempDir(), true, false)
		require.True(t, out.OK())
		assert.Equal(t, "10x10", out.Record.Resolution())
		cache.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProcessOne_VideoMetadataRetriedAfterToolFailure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	testutil.CreateDummyFile(t, src, "fake video bytes")
	store, err := cache.Open(filepath.Join(t.TempDir(), "metadata.db"), "1.0.0", testutil.DiscardHandler())
	require.NoError(t, err)
	defer store.Close()
	asset := proof.DiscoveredAsset{Path: src, Kind: proof.KindVideo}

	missing := new(testutil.MockToolRunner)
	missing.On("Run", mock.Anything, testutil.ToolNamed("ffprobe")).Return(proof.ToolResult{}, proof.ErrToolNotFound)
	first := newProcessor(missing, store).ProcessOne(context.Background(), asset, t.TempDir(), false, false)
	require.True(t, first.OK())
	assert.Equal(t, proof.Placeholder, first.Record.Resolution())
	assert.Zero(t, store.Len(), "a failed probe must not be cached")

	working := probeAndFrameRunner(clipProbeJSON)
	second := newProcessor(working, store).ProcessOne(context.Background(), asset, t.TempDir(), false, false)
	require.True(t, second.OK())
	assert.Equal(t, "1280x720", second.Record.Resolution())
	require.NotNil(t, second.Record.Codec)
	assert.Equal(t, "h264", *second.Record.Codec)
	working.AssertNumberOfCalls(t, "Run", 1)

	// The successful probe is cached for the next run.
	third := new(testutil.MockToolRunner)
	cached := newProcessor(third, store).ProcessOne(context.Background(), asset, t.TempDir(), false, false)
	require.True(t, cached.OK())
	assert.Equal(t, "1280x720", cached.Record.Resolution())
	third.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestProcessOne_OrientationDimensions(t *testing.T) {
	testCases := []struct {
		orientation uint16
		expected    string
	}{
		{0, "40x20"},
		{1, "40x20"},
		{2, "40x20"},
		{3, "40x20"},
		{4, "40x20"},
		{5, "20x40"},
		{6, "20x40"},
		{7, "20x40"},
		{8, "20x40"},
	}
	p := newProcessor(new(testutil.MockToolRunner), nil)
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("Orientation %d", tc.orientation), func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "shot.jpg")
			testutil.WriteJPEGWithEXIF(t, src, 40, 20, tc.orientation, 0)
			out := p.ProcessOne(context.Background(), proof.DiscoveredAsset{Path: src, Kind: proof.KindImage}, t.TempDir(), true, true)
			require.True(t, out.OK(), out.Message())
			assert.Equal(t, tc.expected, out.Record.Resolution())
		})
	}
}

// --- END OF FINAL REVISED FILE pkg/proof/processor_test.go ---
