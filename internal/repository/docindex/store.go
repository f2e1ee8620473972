// Package docindex persists per-document retrieval indexes as files.
package docindex

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/docindex"
)

const (
	filePrefix = "case_"
	fileSuffix = ".idx"
)

// artifact is the on-disk form of a handle.
type artifact struct {
	Version  int
	Identity string
	Model    string
	Chunks   []string
	Vectors  [][]float32
	BuiltAt  int64
}

const artifactVersion = 1

// Stats summarizes the built indexes.
type Stats struct {
	Count     int
	SizeBytes int64
	Samples   []string
}

// Store keeps one file per document under dir. Files are written to a
// temporary name and renamed, so a file that exists is always complete.
type Store struct {
	dir string
}

// New creates the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Check reports whether the artifact directory is still present.
func (s *Store) Check(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("index dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("index dir %s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) path(identity string) string {
	return filepath.Join(s.dir, filePrefix+identity+fileSuffix)
}

// Exists reports whether a complete artifact is present.
func (s *Store) Exists(identity string) (bool, error) {
	if err := docindex.ValidateIdentity(identity); err != nil {
		return false, err
	}
	info, err := os.Stat(s.path(identity))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat index %s: %w", identity, err)
	}
	return info.Mode().IsRegular(), nil
}

// Save writes h atomically, replacing any previous artifact.
func (s *Store) Save(h *docindex.Handle) error {
	tmp, err := os.CreateTemp(s.dir, "."+filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	a := artifact{
		Version:  artifactVersion,
		Identity: h.Identity(),
		Model:    h.Model(),
		Chunks:   h.Chunks(),
		Vectors:  h.Vectors(),
		BuiltAt:  h.BuiltAt(),
	}
	if err := gob.NewEncoder(tmp).Encode(&a); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode index %s: %w", h.Identity(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync index %s: %w", h.Identity(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index %s: %w", h.Identity(), err)
	}
	if err := os.Rename(tmp.Name(), s.path(h.Identity())); err != nil {
		return fmt.Errorf("publish index %s: %w", h.Identity(), err)
	}
	return nil
}

// Load reads an artifact. Missing artifacts yield domain.ErrIndexNotFound.
func (s *Store) Load(identity string) (*docindex.Handle, error) {
	if err := docindex.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(identity))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("index %s: %w", identity, domain.ErrIndexNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", identity, err)
	}
	defer f.Close()

	var a artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", identity, err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("index %s has version %d, want %d", identity, a.Version, artifactVersion)
	}
	return docindex.New(a.Identity, a.Model, a.Chunks, a.Vectors, a.BuiltAt)
}

// Stats counts artifacts and returns up to maxSamples identities in name order.
func (s *Store) Stats(maxSamples int) (Stats, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("read index dir: %w", err)
	}

	var st Stats
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Count++
		st.SizeBytes += info.Size()
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(ids)
	if len(ids) > maxSamples {
		ids = ids[:maxSamples]
	}
	st.Samples = ids
	return st, nil
}
