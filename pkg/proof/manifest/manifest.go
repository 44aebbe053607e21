// --- START OF FINAL REVISED FILE pkg/proof/manifest/manifest.go ---
// Package manifest writes the per-asset table printed by --manifest-only runs.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/brandonaviram/proof/pkg/proof"
)

// ErrUnknownFormat is returned for formats other than tsv, json, yaml and toml.
var ErrUnknownFormat = errors.New("unknown manifest format")

// Columns is the TSV header row.
var Columns = []string{"Filename", "Type", "Resolution", "Format", "Size", "Color Space"}

// Row is one manifest line in structured formats.
type Row struct {
	Filename   string  `json:"filename" yaml:"filename" toml:"filename"`
	Type       string  `json:"type" yaml:"type" toml:"type"`
	Resolution string  `json:"resolution" yaml:"resolution" toml:"resolution"`
	Format     string  `json:"format" yaml:"format" toml:"format"`
	Size       string  `json:"size" yaml:"size" toml:"size"`
	ColorSpace *string `json:"color_space" yaml:"color_space,omitempty" toml:"color_space,omitempty"`
}

// tomlDocument wraps rows so they encode as an [[asset]] array of tables.
type tomlDocument struct {
	Assets []Row `toml:"asset"`
}

// ParseFormat validates a user-supplied format name (case-insensitive).
func ParseFormat(s string) (proof.ManifestFormat, error) {
	switch f := proof.ManifestFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case proof.ManifestTSV, proof.ManifestJSON, proof.ManifestYAML, proof.ManifestTOML:
		return f, nil
	case "":
		return proof.DefaultManifestFormat, nil
	default:
		return "", fmt.Errorf("%w: '%s' (expected tsv, json, yaml or toml)", ErrUnknownFormat, s)
	}
}

// Rows converts records to manifest rows, keeping their order.
func Rows(records []proof.AssetRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Filename:   r.Filename,
			Type:       r.Kind.String(),
			Resolution: r.Resolution(),
			Format:     r.Format,
			Size:       r.HumanSize(),
			ColorSpace: r.ColorSpace,
		})
	}
	return rows
}

// Write renders records to w in the given format.
func Write(w io.Writer, records []proof.AssetRecord, format proof.ManifestFormat) error {
	rows := Rows(records)
	switch format {
	case proof.ManifestTSV, "":
		return writeTSV(w, rows)
	case proof.ManifestJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case proof.ManifestYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case proof.ManifestTOML:
		return toml.NewEncoder(w).Encode(tomlDocument{Assets: rows})
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownFormat, format)
	}
}

func writeTSV(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, strings.Join(Columns, "\t")); err != nil {
		return err
	}
	for _, r := range rows {
		cs := proof.Placeholder
		if r.ColorSpace != nil {
			cs = *r.ColorSpace
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Filename, r.Type, r.Resolution, r.Format, r.Size, cs); err != nil {
			return err
		}
	}
	return nil
}

// --- END OF FINAL REVISED FILE pkg/proof/manifest/manifest.go ---
