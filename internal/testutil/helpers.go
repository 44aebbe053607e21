// --- START OF FINAL REVISED FILE internal/testutil/helpers.go ---
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateDummyFile creates a file with the given content, creating parent directories.
func CreateDummyFile(t *testing.T, path string, content string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755), "Failed to create directory for dummy file %s", fullPath)
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644), "Failed to write dummy file %s", fullPath)
}

// CreateDummyDir ensures a directory exists at the given path.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Clean(path), 0755), "Failed to create dummy directory %s", path)
}

// testImage draws a simple gradient so encoders produce non-trivial output.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

// WriteJPEG writes a w×h JPEG to path.
func WriteJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	WriteJPEGWithEXIF(t, path, w, h, 0, 0)
}

// WriteJPEGWithEXIF writes a w×h JPEG carrying an EXIF block with the given
// Orientation and ColorSpace tags. A zero value omits the tag; when both are
// zero no EXIF block is written.
func WriteJPEGWithEXIF(t *testing.T, path string, w, h int, orientation, colorSpace uint16) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 90}))
	data := buf.Bytes()
	if orientation != 0 || colorSpace != 0 {
		app1 := exifSegment(orientation, colorSpace)
		// Insert right after the SOI marker.
		out := make([]byte, 0, len(data)+len(app1))
		out = append(out, data[:2]...)
		out = append(out, app1...)
		out = append(out, data[2:]...)
		data = out
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// WritePNG writes a w×h PNG to path.
func WritePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// exifSegment builds a little-endian APP1 EXIF segment with Orientation in
// IFD0 and ColorSpace in the Exif sub-IFD.
func exifSegment(orientation, colorSpace uint16) []byte {
	type entry struct {
		tag, typ uint16
		count    uint32
		value    uint32
	}
	const (
		typeShort = 3
		typeLong  = 4
	)
	le := binary.LittleEndian
	writeIFD := func(b *bytes.Buffer, entries []entry) {
		_ = binary.Write(b, le, uint16(len(entries)))
		for _, e := range entries {
			_ = binary.Write(b, le, e.tag)
			_ = binary.Write(b, le, e.typ)
			_ = binary.Write(b, le, e.count)
			if e.typ == typeShort {
				_ = binary.Write(b, le, uint16(e.value))
				_ = binary.Write(b, le, uint16(0))
			} else {
				_ = binary.Write(b, le, e.value)
			}
		}
		_ = binary.Write(b, le, uint32(0)) // no next IFD
	}

	var ifd0 []entry
	if orientation != 0 {
		ifd0 = append(ifd0, entry{0x0112, typeShort, 1, uint32(orientation)})
	}
	ifd0Size := 2 + 12*(len(ifd0)+1) + 4
	if colorSpace != 0 {
		subOffset := uint32(8 + ifd0Size)
		ifd0 = append(ifd0, entry{0x8769, typeLong, 1, subOffset})
	}

	var tiff bytes.Buffer
	tiff.WriteString("II")
	_ = binary.Write(&tiff, le, uint16(42))
	_ = binary.Write(&tiff, le, uint32(8))
	writeIFD(&tiff, ifd0)
	if colorSpace != 0 {
		writeIFD(&tiff, []entry{{0xA001, typeShort, 1, uint32(colorSpace)}})
	}

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

// --- END OF FINAL REVISED FILE internal/testutil/helpers.go ---
