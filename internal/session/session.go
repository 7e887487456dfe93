// Package session keeps the most recently generated dataset on disk so that
// later commands can preview or export it. Each save replaces the previous one.
package session

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
	"github.com/KaramelBytes/synthtab-cli/internal/synth"
	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

const (
	metaFileName  = "current.json"
	tableFileName = "current.tbl"
)

var (
	// ErrNoDataset means nothing has been generated yet.
	ErrNoDataset = errors.New("no dataset generated yet; run `synthtab generate` first")
	// ErrCorrupt means the metadata and table files do not belong together.
	ErrCorrupt = errors.New("stored dataset is corrupt")
)

// Store is the current-result slot under a data directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the on-disk store directory.
func (s *Store) Dir() string { return s.dir }

type tableBlob struct {
	ID    string
	Table *dataset.Table
}

// Save replaces the stored result. The table is written before the metadata so
// a reader never sees metadata pointing at a missing table.
func (s *Store) Save(res *synth.Result) error {
	if res == nil || res.Table == nil {
		return errors.New("session: nothing to save")
	}
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tableBlob{ID: res.ID, Table: res.Table}); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if err := utils.SafeWriteFile(filepath.Join(s.dir, tableFileName), snappy.Encode(nil, buf.Bytes())); err != nil {
		return err
	}
	meta, err := utils.PrettyJSON(res)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.dir, metaFileName), meta)
}

// Load returns the stored result with its table, or ErrNoDataset.
func (s *Store) Load() (*synth.Result, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, metaFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoDataset
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var res synth.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, tableFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: table file missing", ErrCorrupt)
		}
		return nil, fmt.Errorf("read table: %w", err)
	}
	dec, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var blob tableBlob
	if err := gob.NewDecoder(bytes.NewReader(dec)).Decode(&blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if blob.ID != res.ID || blob.Table == nil {
		return nil, fmt.Errorf("%w: table %s does not match dataset %s", ErrCorrupt, blob.ID, res.ID)
	}
	res.Table = blob.Table
	return &res, nil
}

// Clear removes the stored result. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	for _, name := range []string{metaFileName, tableFileName} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}
