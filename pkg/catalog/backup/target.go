package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Target is where a snapshot is written to or read from.
type Target interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	String() string
}

// Open returns the target for location: an s3://bucket/key URL or a local
// file path.
func Open(ctx context.Context, location string, cfg S3Config) (Target, error) {
	if location == "" {
		return nil, fmt.Errorf("backup location is required")
	}
	if strings.HasPrefix(location, s3Scheme) {
		return newS3Target(ctx, location, cfg)
	}
	return fileTarget{path: location}, nil
}

// Write encodes snap and writes it to t.
func Write(ctx context.Context, t Target, snap *Snapshot) error {
	data, err := encode(snap, compressed(t.String()))
	if err != nil {
		return err
	}
	if err := t.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", t, err)
	}
	return nil
}

// Read reads and decodes the snapshot stored at t.
func Read(ctx context.Context, t Target) (*Snapshot, error) {
	data, err := t.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from %s: %w", t, err)
	}
	return decode(data, compressed(t.String()))
}

func compressed(location string) bool {
	return strings.HasSuffix(location, ".gz")
}

func encode(snap *Snapshot, gz bool) ([]byte, error) {
	var buf bytes.Buffer
	var w io.Writer = &buf

	var zw *gzip.Writer
	if gz {
		zw = gzip.NewWriter(&buf)
		w = zw
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to compress snapshot: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func decode(data []byte, gz bool) (*Snapshot, error) {
	var r io.Reader = bytes.NewReader(data)
	if gz {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// fileTarget stores the snapshot in a local file.
type fileTarget struct {
	path string
}

func (f fileTarget) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	// Write to a sibling file first so a failed backup never truncates the
	// previous one.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f fileTarget) Read(context.Context) ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileTarget) String() string {
	return f.path
}
