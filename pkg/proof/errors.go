// --- START OF FINAL REVISED FILE pkg/proof/errors.go ---
package proof

import (
	"errors"
	"fmt"
)

// --- Exported Error Variables ---
// Callers check against these using errors.Is. Per-asset failures are reported
// as *AssetError values which unwrap to one of the per-asset sentinels below.

var (
	// ErrNotADirectory indicates the input path does not exist or is not a directory.
	// Returned wrapped by Discover; fatal for every run mode.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNoSupportedAssets indicates discovery finished without finding a single
	// supported image or video. Returned wrapped by Discover; fatal.
	ErrNoSupportedAssets = errors.New("no supported assets found")

	// ErrNoAssetsProcessed indicates every discovered asset failed processing.
	ErrNoAssetsProcessed = errors.New("No assets could be processed")

	// ErrStatFailed indicates the file size could not be read (permissions, or the
	// file disappeared after discovery). Per-asset.
	ErrStatFailed = errors.New("failed to stat file")

	// ErrDecodeFailed indicates an image could not be decoded, or its header could
	// not be parsed when only dimensions were requested. Per-asset.
	ErrDecodeFailed = errors.New("failed to decode image")

	// ErrThumbnailFailed indicates an image thumbnail could not be encoded or written. Per-asset.
	ErrThumbnailFailed = errors.New("failed to write thumbnail")

	// ErrToolNotFound indicates an external executable could not be started.
	ErrToolNotFound = errors.New("external tool not found")

	// ErrToolNonZeroExit indicates an external executable exited with a non-zero status.
	// The accompanying ToolResult carries the exit code.
	ErrToolNonZeroExit = errors.New("external tool exited non-zero")

	// ErrToolCancelled indicates the context was cancelled while a tool was running.
	ErrToolCancelled = errors.New("external tool cancelled")

	// ErrRenderUnavailable indicates the document renderer is not installed.
	ErrRenderUnavailable = errors.New("renderer unavailable")

	// ErrRenderFailed indicates the document renderer ran but did not produce output.
	ErrRenderFailed = errors.New("render failed")

	// ErrPayloadInvalid indicates the document payload did not satisfy its schema.
	// Seeing this is a bug in payload construction, not a user error.
	ErrPayloadInvalid = errors.New("document payload invalid")

	// ErrConfigValidation indicates invalid configuration values.
	ErrConfigValidation = errors.New("configuration validation failed")

	// ErrRunCancelled indicates the user quit the dashboard before the run finished.
	ErrRunCancelled = errors.New("run cancelled")
)

// AssetError describes why a single asset could not be processed.
// Its message names the offending path; errors.Is matches both Kind and the cause.
type AssetError struct {
	Op   string // e.g. "cannot decode"
	Path string
	Kind error // one of the per-asset sentinels
	Err  error
}

// Error implements error.
func (e *AssetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s '%s'", e.Op, e.Path)
	}
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *AssetError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// kindError carries a user-facing message verbatim while still matching a sentinel.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string   { return e.msg }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.cause} }

// WithKind returns an error whose message is exactly msg and which matches
// both kind and cause (if non-nil) under errors.Is.
func WithKind(kind error, msg string, cause error) error {
	return &kindError{kind: kind, msg: msg, cause: cause}
}

func assetErr(kind error, op, path string, err error) error {
	return &AssetError{Op: op, Path: path, Kind: kind, Err: err}
}

// --- END OF FINAL REVISED FILE pkg/proof/errors.go ---
