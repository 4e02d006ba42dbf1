package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"fwrap/internal/wrap"
)

// snapshotSchema is bumped whenever the encoded procedure layout changes.
const snapshotSchema uint16 = 1

// Snapshot is the assembled intermediate form of a module, for inspection
// and for regenerating output without re-reading the inputs.
type Snapshot struct {
	Schema     uint16            `msgpack:"schema"`
	Module     string            `msgpack:"module"`
	Procedures []*wrap.Procedure `msgpack:"procedures"`
}

// WriteSnapshot encodes procs.
func WriteSnapshot(w io.Writer, module string, procs []*wrap.Procedure) error {
	snap := Snapshot{Schema: snapshotSchema, Module: module, Procedures: procs}
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Schema != snapshotSchema {
		return nil, fmt.Errorf("snapshot schema %d is not supported (want %d)", snap.Schema, snapshotSchema)
	}
	return &snap, nil
}

// SaveSnapshot writes a snapshot file atomically.
func SaveSnapshot(path, module string, procs []*wrap.Procedure) (err error) {
	f, err := os.CreateTemp(dirOf(path), ".fwrap-snapshot-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = WriteSnapshot(f, module, procs); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
