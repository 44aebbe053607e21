// --- START OF FINAL REVISED FILE pkg/proof/image.go ---
package proof

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processImage fills dimensions, thumbnail and color space for an image record.
func (p *Processor) processImage(rec *AssetRecord, asset DiscoveredAsset, info os.FileInfo, workDir string, generateThumbnail, autoOrient bool) error {
	path := asset.Path
	if !generateThumbnail {
		if meta, hit := p.cache.Lookup(path, info.Size(), info.ModTime()); hit && meta.Width != nil && meta.Height != nil {
			p.logger.Debug("Image metadata cache hit", slog.String("path", path))
			rec.Width, rec.Height, rec.ColorSpace = meta.Width, meta.Height, meta.ColorSpace
			return nil
		}
		w, h, err := readDimensions(path)
		if err != nil {
			return assetErr(ErrDecodeFailed, "cannot read dimensions of", path, err)
		}
		rec.Width, rec.Height = &w, &h
		rec.ColorSpace = readColorSpace(path)
		p.storeMetadata(path, info, CachedMetadata{Width: rec.Width, Height: rec.Height, ColorSpace: rec.ColorSpace})
		return nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		return assetErr(ErrDecodeFailed, "cannot decode", path, err)
	}
	if autoOrient {
		img = applyOrientation(img, readOrientation(path))
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rec.Width, rec.Height = &w, &h

	thumbPath := thumbnailPath(workDir, asset.Index)
	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(ThumbnailQuality)); err != nil {
		return assetErr(ErrThumbnailFailed, "cannot save thumbnail for", path, err)
	}
	rec.ThumbnailPath = thumbPath
	rec.ColorSpace = readColorSpace(path)
	return nil
}

// readDimensions parses only the image header.
func readDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// readExif returns nil when the file has no readable EXIF block.
func readExif(path string) *exif.Exif {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil
	}
	return x
}

// readOrientation returns the EXIF orientation (1-8), defaulting to 1.
func readOrientation(path string) int {
	x := readExif(path)
	if x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// readColorSpace maps the EXIF ColorSpace tag to a display name.
func readColorSpace(path string) *string {
	x := readExif(path)
	if x == nil {
		return nil
	}
	tag, err := x.Get(exif.ColorSpace)
	if err != nil {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	name := colorSpaceName(v)
	return &name
}

func colorSpaceName(v int) string {
	switch v {
	case 1:
		return "sRGB"
	case 2:
		return "Adobe RGB"
	case 65535:
		return "Uncalibrated"
	default:
		return fmt.Sprintf("Unknown (%d)", v)
	}
}

// applyOrientation undoes an EXIF orientation. imaging rotates counter-clockwise.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// --- END OF FINAL REVISED FILE pkg/proof/image.go ---
