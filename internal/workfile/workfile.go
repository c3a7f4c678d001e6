// Package workfile reads and writes workflow files: JSON snapshots of the
// complete wizard state, saved and reloaded across sessions.
//
// A load validates the file's shape fully before it yields a state, so a
// malformed file can never partially apply. The empty path is the
// cancelled-dialog sentinel and is a silent no-op for both directions.
package workfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/calibrate-workbench/internal/domain"
)

// Version is the workflow file format version. Files without it predate
// the versioned envelope and are rejected.
const Version = 1

// ErrNoPath marks the cancelled-dialog sentinel; callers treat it as a
// no-op, not a failure.
var ErrNoPath = errors.New("no path selected")

// Envelope is the on-disk representation: the state wrapped with format
// metadata.
type Envelope struct {
	Version  int          `json:"version"`
	SavedAt  time.Time    `json:"savedAt"`
	Workflow domain.State `json:"workflow"`
}

// Save serializes the state to path, atomically: the file is written to a
// temp name in the destination directory and renamed into place, so an
// interrupted save never truncates an existing workflow file.
func Save(path string, s domain.State) error {
	if path == "" {
		return ErrNoPath
	}

	data, err := json.MarshalIndent(Envelope{
		Version:  Version,
		SavedAt:  domain.Now().UTC(),
		Workflow: s,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".workflow-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write workflow: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}

// Load reads and validates a workflow file. The returned state is only
// valid when err is nil; any validation failure leaves the caller's store
// untouched by construction.
func Load(path string) (domain.State, error) {
	if path == "" {
		return domain.State{}, ErrNoPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.State{}, fmt.Errorf("read workflow file: %w", err)
	}
	return Decode(data)
}

// Decode parses and validates a serialized workflow envelope.
func Decode(data []byte) (domain.State, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.State{}, fmt.Errorf("parse workflow file: %w", err)
	}
	if env.Version != Version {
		return domain.State{}, fmt.Errorf("unsupported workflow file version %d", env.Version)
	}
	if err := Validate(env.Workflow); err != nil {
		return domain.State{}, fmt.Errorf("invalid workflow file: %w", err)
	}
	return env.Workflow, nil
}

// Validate checks the structural invariants a loaded state must satisfy
// before it may replace the store contents.
func Validate(s domain.State) error {
	if s.Variant != domain.VariantNone && !s.Variant.Valid() {
		return fmt.Errorf("unknown workflow variant %q", s.Variant)
	}
	if s.Page.Active < domain.FirstPage || s.Page.Active > domain.LastPage {
		return fmt.Errorf("page %d out of range", s.Page.Active)
	}

	seen := make(map[int]bool, len(s.Computations))
	for _, c := range s.Computations {
		if c.Index < 0 {
			return fmt.Errorf("computation %q has negative index", c.Name)
		}
		if seen[c.Index] {
			return fmt.Errorf("duplicate computation index %d", c.Index)
		}
		seen[c.Index] = true
		if c.Field != "" && !domain.IsKnownField(c.Field) {
			return fmt.Errorf("computation %q has unknown field %q", c.Name, c.Field)
		}
	}

	switch s.Parameters.OutFormat {
	case "", domain.OutFormatASCII, domain.OutFormatParquet:
	default:
		return fmt.Errorf("unknown output format %q", s.Parameters.OutFormat)
	}
	return nil
}
