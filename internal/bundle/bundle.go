// Package bundle persists and restores a trained model as one atomic
// artifact: vocabulary, token weights, per-attribute regressors, and the
// target attribute list.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/moodlens/go-tag-mood-predictor/internal/regress"
	"github.com/moodlens/go-tag-mood-predictor/internal/vocab"
)

// FormatVersion identifies the on-disk bundle layout. Load rejects any
// other version rather than guessing at compatibility.
const FormatVersion = 1

// SidecarSuffix is appended to the bundle path for the descriptive
// sidecar file. The sidecar exists for inspection only; the engine
// functions from the primary artifact alone.
const SidecarSuffix = ".meta.json"

// Error wraps any failure to persist or restore a bundle. Load never
// returns a partially initialized bundle: on error the result is nil.
type Error struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bundle %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load failure causes, matchable with errors.Is through *Error.
var (
	// ErrCorrupt indicates the artifact could not be decoded.
	ErrCorrupt = errors.New("corrupt bundle")

	// ErrVersionMismatch indicates an unsupported format version.
	ErrVersionMismatch = errors.New("unsupported bundle version")

	// ErrIncomplete indicates structurally valid JSON missing required
	// parts, such as a model count that disagrees with the attribute
	// list.
	ErrIncomplete = errors.New("incomplete bundle")
)

// Bundle is the persisted unit of a trained model. It is created once by
// training and read-only afterward: a loaded Bundle may be shared across
// concurrent prediction calls without locking.
type Bundle struct {
	Version    int                  `json:"version"`
	Vocabulary *vocab.Vocabulary    `json:"vocabulary"`
	Model      *regress.MultiTarget `json:"model"`
}

// New assembles a bundle from freshly trained parts.
func New(v *vocab.Vocabulary, m *regress.MultiTarget) *Bundle {
	return &Bundle{
		Version:    FormatVersion,
		Vocabulary: v,
		Model:      m,
	}
}

// Attributes returns the target attribute list, in model output order.
func (b *Bundle) Attributes() []string {
	return b.Model.Attributes
}

// sidecar is the descriptive companion record listing what the model
// knows, for debugging without decoding the full artifact.
type sidecar struct {
	Version    int      `json:"version"`
	Attributes []string `json:"attributes"`
	Vocabulary []string `json:"vocabulary"`
}

// Save writes the bundle to path as a single atomic unit: the JSON
// artifact is written to a temp file in the destination directory and
// renamed into place, so a failed save never leaves a partial artifact.
// A descriptive sidecar is written next to it.
func Save(b *Bundle, path string) error {
	data, err := json.Marshal(b)
	if err != nil {
		return &Error{Op: "save", Path: path, Err: err}
	}

	if err := writeAtomic(path, data); err != nil {
		return &Error{Op: "save", Path: path, Err: err}
	}

	meta, err := json.MarshalIndent(sidecar{
		Version:    b.Version,
		Attributes: b.Attributes(),
		Vocabulary: b.Vocabulary.Tokens,
	}, "", "  ")
	if err != nil {
		return &Error{Op: "save", Path: path, Err: err}
	}
	if err := writeAtomic(path+SidecarSuffix, meta); err != nil {
		return &Error{Op: "save", Path: path, Err: err}
	}

	return nil
}

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads a bundle saved by Save and reconstructs an equivalent
// model: predictions on identical input are bit-identical to the bundle
// that was saved. A corrupt, missing, or version-incompatible artifact
// fails here, at load time, never at first prediction.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "load", Path: path, Err: err}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &Error{Op: "load", Path: path, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}

	if b.Version != FormatVersion {
		return nil, &Error{Op: "load", Path: path, Err: fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, b.Version, FormatVersion)}
	}
	if err := validate(&b); err != nil {
		return nil, &Error{Op: "load", Path: path, Err: err}
	}

	b.Vocabulary.Reindex()
	return &b, nil
}

// validate checks structural consistency before the bundle is used.
func validate(b *Bundle) error {
	switch {
	case b.Vocabulary == nil:
		return fmt.Errorf("%w: missing vocabulary", ErrIncomplete)
	case len(b.Vocabulary.Weights) != len(b.Vocabulary.Tokens):
		return fmt.Errorf("%w: %d weights for %d tokens", ErrIncomplete, len(b.Vocabulary.Weights), len(b.Vocabulary.Tokens))
	case b.Model == nil:
		return fmt.Errorf("%w: missing model", ErrIncomplete)
	case len(b.Model.Attributes) == 0:
		return fmt.Errorf("%w: empty attribute list", ErrIncomplete)
	case len(b.Model.Forests) != len(b.Model.Attributes):
		return fmt.Errorf("%w: %d models for %d attributes", ErrIncomplete, len(b.Model.Forests), len(b.Model.Attributes))
	}
	for i, f := range b.Model.Forests {
		if f == nil || len(f.Trees) == 0 {
			return fmt.Errorf("%w: attribute %q has no trained model", ErrIncomplete, b.Model.Attributes[i])
		}
	}
	return nil
}
