package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/gestor"
)

// File stores a ledger in a single file, CSV or JSONL depending on its
// extension.
type File struct {
	path     string
	currency string
	decode   func(io.Reader, string) (gestor.Ledger, error)
	encode   func(io.Writer, gestor.Ledger) error
}

// NewFile returns the store for the file at path. The format is chosen by
// extension: ".csv" or ".jsonl".
func NewFile(path, currency string) (*File, error) {
	f := &File{path: path, currency: currency}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f.decode, f.encode = gestor.DecodeCSV, gestor.EncodeCSV
	case ".jsonl":
		f.decode, f.encode = gestor.DecodeJSONL, gestor.EncodeJSONL
	default:
		return nil, fmt.Errorf("unsupported ledger file extension %q for %q, want .csv or .jsonl", ext, path)
	}
	return f, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Load reads the ledger. A missing file is an empty ledger.
func (f *File) Load(ctx context.Context) (gestor.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return gestor.Ledger{}, err
	}
	r, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return gestor.NewLedgerIn(f.currency)
	}
	if err != nil {
		return gestor.Ledger{}, fmt.Errorf("could not open ledger file %q: %w", f.path, err)
	}
	defer r.Close()

	l, err := f.decode(r, f.currency)
	if err != nil {
		return gestor.Ledger{}, fmt.Errorf("could not decode ledger file %q: %w", f.path, err)
	}
	return l, nil
}

// Save rewrites the whole file. The ledger is written to a temporary file in
// the same directory which is then renamed over the previous one.
func (f *File) Save(ctx context.Context, l gestor.Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for ledger %q: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary ledger file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := f.encode(tmp, l); err != nil {
		tmp.Close()
		return fmt.Errorf("could not encode ledger %q: %w", f.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not sync ledger %q: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close ledger %q: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("could not replace ledger %q: %w", f.path, err)
	}
	return nil
}
