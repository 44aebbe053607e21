// --- START OF FINAL REVISED FILE pkg/proof/render/payload.go ---
package render

import (
	_ "embed" // Required for //go:embed
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/util"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed payload.schema.json
var payloadSchemaJSON string

// ThumbsDir is the build-directory subfolder holding thumbnail copies.
const ThumbsDir = "thumbs"

// Payload is the data.json document consumed by the layout template.
type Payload struct {
	Client  string         `json:"client"`
	Title   *string        `json:"title"`
	Date    string         `json:"date"`
	Columns int            `json:"columns"`
	Summary Summary        `json:"summary"`
	Assets  []PayloadAsset `json:"assets"`
}

// Summary aggregates the rendered records.
type Summary struct {
	TotalFiles int    `json:"total_files"`
	TotalSize  string `json:"total_size"`
	ImageCount int    `json:"image_count"`
	VideoCount int    `json:"video_count"`
}

// PayloadAsset is one grid cell.
type PayloadAsset struct {
	Filename   string  `json:"filename"`
	Kind       string  `json:"kind"`
	Resolution string  `json:"resolution"`
	Format     string  `json:"format"`
	HumanSize  string  `json:"human_size"`
	Thumbnail  *string `json:"thumbnail"`
	ColorSpace *string `json:"color_space"`
	Duration   *string `json:"duration"`
}

// BuildPayload converts a render request into the template payload.
// Thumbnails are referenced as thumbs/<basename>.
func BuildPayload(req proof.RenderRequest) Payload {
	p := Payload{
		Client:  req.Client,
		Date:    req.Date,
		Columns: req.Columns,
		Assets:  make([]PayloadAsset, 0, len(req.Records)),
	}
	if req.Title != "" {
		title := req.Title
		p.Title = &title
	}

	var totalSize int64
	for _, r := range req.Records {
		totalSize += r.FileSize
		if r.Kind == proof.KindVideo {
			p.Summary.VideoCount++
		} else {
			p.Summary.ImageCount++
		}

		a := PayloadAsset{
			Filename:   r.Filename,
			Kind:       r.Kind.String(),
			Resolution: r.Resolution(),
			Format:     r.Format,
			HumanSize:  r.HumanSize(),
			ColorSpace: r.ColorSpace,
		}
		if r.ThumbnailPath != "" {
			ref := ThumbsDir + "/" + filepath.Base(r.ThumbnailPath)
			a.Thumbnail = &ref
		}
		if label, ok := r.DurationLabel(); ok {
			a.Duration = &label
		}
		p.Assets = append(p.Assets, a)
	}
	p.Summary.TotalFiles = len(req.Records)
	p.Summary.TotalSize = util.HumanSize(totalSize)
	return p
}

var loadPayloadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchemaJSON))
})

// EncodePayload validates p against the embedded schema and returns it as
// two-space indented JSON.
func EncodePayload(p Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proof.ErrPayloadInvalid, err)
	}

	schema, err := loadPayloadSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot load payload schema: %w", proof.ErrPayloadInvalid, err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proof.ErrPayloadInvalid, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", proof.ErrPayloadInvalid, strings.Join(msgs, "; "))
	}
	return data, nil
}

// --- END OF FINAL REVISED FILE pkg/proof/render/payload.go ---
