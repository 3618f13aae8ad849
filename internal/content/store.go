// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content persists publication records as one YAML file per record
// under content/publications/, plus the precomputed embeddings index the
// website's search feature reads.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/shibata-lab/labpipe/pkg/types"
)

const (
	publicationsDir = "publications"
	embeddingsFile  = "embeddings.json"
)

// Store provides CRUD access to the content directory. It is the only wire
// format shared with the website's build-time content loader, so records
// written here must stay parseable by it.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at contentDir. The publications
// subdirectory is created if missing.
func NewStore(contentDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(contentDir, publicationsDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating publications directory: %w", err)
	}
	return &Store{dir: contentDir}, nil
}

// Dir returns the content root directory.
func (s *Store) Dir() string { return s.dir }

// PublicationsDir returns the directory holding record files.
func (s *Store) PublicationsDir() string {
	return filepath.Join(s.dir, publicationsDir)
}

// path returns the record file path for an ID.
func (s *Store) path(id string) string {
	return filepath.Join(s.PublicationsDir(), id+".yaml")
}

// Exists reports whether a record file exists for the ID.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Load reads a single record by ID.
func (s *Store) Load(id string) (*types.Publication, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var p types.Publication
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	return &p, nil
}

// LoadAll reads every record in the store, sorted by ID for deterministic
// iteration order. Malformed files abort the load.
func (s *Store) LoadAll() ([]*types.Publication, error) {
	entries, err := os.ReadDir(s.PublicationsDir())
	if err != nil {
		return nil, fmt.Errorf("reading publications directory: %w", err)
	}

	var pubs []*types.Publication
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		p, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}

	sort.Slice(pubs, func(i, j int) bool { return pubs[i].ID < pubs[j].ID })
	return pubs, nil
}

// Save writes a record to its file. The record must have an ID.
func (s *Store) Save(p *types.Publication) error {
	if p.ID == "" {
		return fmt.Errorf("record has no ID")
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", p.ID, err)
	}
	if err := os.WriteFile(s.path(p.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a record file. Deletion is unguarded: there is no
// soft-delete or audit trail, callers gate it behind --dry-run.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// EmbeddingsPath returns the path of the embeddings index file.
func (s *Store) EmbeddingsPath() string {
	return filepath.Join(s.dir, embeddingsFile)
}

// LoadEmbeddings reads the whole embeddings index. A missing file returns an
// empty slice so a first run starts from nothing.
func (s *Store) LoadEmbeddings() ([]types.EmbeddingEntry, error) {
	data, err := os.ReadFile(s.EmbeddingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading embeddings index: %w", err)
	}
	var entries []types.EmbeddingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing embeddings index: %w", err)
	}
	return entries, nil
}

// SaveEmbeddings writes the embeddings index via temp-file-then-rename. The
// website reads this file live, so a partial write must never be visible.
func (s *Store) SaveEmbeddings(entries []types.EmbeddingEntry) error {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling embeddings index: %w", err)
	}

	path := s.EmbeddingsPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing embeddings temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming embeddings index: %w", err)
	}
	return nil
}
