// --- START OF FINAL REVISED FILE pkg/proof/render/typst.go ---
// Package render produces the proof PDF by handing a JSON payload and a
// layout template to the external typst compiler.
package render

import (
	_ "embed" // Required for //go:embed
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/brandonaviram/proof/pkg/proof"
)

//go:embed template.typ
var defaultTemplate []byte

// Build directory layout.
const (
	TemplateFileName = "template.typ"
	DataFileName     = "data.json"
	FontsDir         = "fonts"
)

const installHint = "typst not found — install with: brew install typst"

// TypstRenderer implements proof.DocumentRenderer with the typst CLI.
type TypstRenderer struct {
	runner       proof.ToolRunner
	logger       *slog.Logger
	typst        string
	templatePath string
}

var _ proof.DocumentRenderer = (*TypstRenderer)(nil)

// NewTypstRenderer creates a renderer. An empty typstPath means "typst" on
// PATH; an empty templatePath uses the embedded layout.
func NewTypstRenderer(loggerHandler slog.Handler, runner proof.ToolRunner, typstPath, templatePath string) *TypstRenderer { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if typstPath == "" {
		typstPath = proof.DefaultTypst
	}
	return &TypstRenderer{
		runner:       runner,
		logger:       slog.New(loggerHandler).With(slog.String("component", "typstRenderer")),
		typst:        typstPath,
		templatePath: templatePath,
	}
}

// CheckAvailable verifies the typst executable can be started.
func (r *TypstRenderer) CheckAvailable(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, proof.ToolCommand{Name: r.typst, Args: []string{"--version"}}); err != nil {
		r.logger.Debug("typst availability check failed", slog.String("typst", r.typst), slog.String("error", err.Error()))
		return proof.WithKind(proof.ErrRenderUnavailable, installHint, err)
	}
	return nil
}

// Render writes the build directory and compiles req.OutputPath.
func (r *TypstRenderer) Render(ctx context.Context, req proof.RenderRequest) error {
	if err := r.CheckAvailable(ctx); err != nil {
		return err
	}

	data, err := EncodePayload(BuildPayload(req))
	if err != nil {
		return err
	}
	tmpl, err := r.loadTemplate()
	if err != nil {
		return err
	}

	buildDir, err := os.MkdirTemp("", "proof-build-*")
	if err != nil {
		return fmt.Errorf("%w: cannot create build directory: %w", proof.ErrRenderFailed, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(buildDir); rmErr != nil {
			r.logger.Warn("Failed to remove build directory", slog.String("path", buildDir), slog.String("error", rmErr.Error()))
		}
	}()

	if err := writeBuildDir(buildDir, tmpl, data, req.Records); err != nil {
		return fmt.Errorf("%w: %w", proof.ErrRenderFailed, err)
	}

	output, err := filepath.Abs(req.OutputPath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve output path '%s': %w", proof.ErrRenderFailed, req.OutputPath, err)
	}

	r.logger.Info("Compiling document", slog.String("output", output), slog.Int("assets", len(req.Records)))
	res, err := r.runner.Run(ctx, proof.ToolCommand{
		Name: r.typst,
		Args: []string{"compile", "--font-path", FontsDir, TemplateFileName, output},
		Dir:  buildDir,
	})
	if err != nil {
		if len(res.Stderr) > 0 {
			r.logger.Debug("typst stderr", slog.String("stderr", string(res.Stderr)))
		}
		switch {
		case errors.Is(err, proof.ErrToolNonZeroExit):
			return proof.WithKind(proof.ErrRenderFailed, fmt.Sprintf("typst compile failed (exit code: %d)", res.ExitCode), err)
		case errors.Is(err, proof.ErrToolNotFound):
			return proof.WithKind(proof.ErrRenderUnavailable, installHint, err)
		case errors.Is(err, proof.ErrToolCancelled):
			return err
		default:
			return fmt.Errorf("%w: failed to run typst: %w", proof.ErrRenderFailed, err)
		}
	}
	return nil
}

func (r *TypstRenderer) loadTemplate() ([]byte, error) {
	if r.templatePath == "" {
		return defaultTemplate, nil
	}
	tmpl, err := os.ReadFile(r.templatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read template '%s': %w", proof.ErrRenderFailed, r.templatePath, err)
	}
	r.logger.Debug("Using custom template", slog.String("path", r.templatePath))
	return tmpl, nil
}

// writeBuildDir lays out template.typ, data.json, thumbs/ and an empty fonts/.
func writeBuildDir(dir string, tmpl, data []byte, records []proof.AssetRecord) error {
	if err := os.WriteFile(filepath.Join(dir, TemplateFileName), tmpl, 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, DataFileName), data, 0644); err != nil {
		return err
	}
	thumbs := filepath.Join(dir, ThumbsDir)
	if err := os.MkdirAll(thumbs, 0755); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.ThumbnailPath == "" {
			continue
		}
		if err := copyFile(rec.ThumbnailPath, filepath.Join(thumbs, filepath.Base(rec.ThumbnailPath))); err != nil {
			return fmt.Errorf("cannot copy thumbnail for '%s': %w", rec.Filename, err)
		}
	}
	return os.MkdirAll(filepath.Join(dir, FontsDir), 0755)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// --- END OF FINAL REVISED FILE pkg/proof/render/typst.go ---
