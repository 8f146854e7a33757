package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/bitrig/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of scene documents.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// Store implements ports.SceneStore using the local filesystem.
// It stores one document per scene in a configured directory.
type Store struct {
	BasePath string
	Format   Format
}

// New creates a new Store with the given base path and format.
// If basePath is empty, it defaults to ".bitrig/scenes". Format defaults to YAML.
func New(basePath string, format Format) *Store {
	if basePath == "" {
		basePath = filepath.Join(".bitrig", "scenes")
	}
	if format == "" {
		format = YAML
	}
	return &Store{BasePath: basePath, Format: format}
}

func (s *Store) ext() string {
	return "." + string(s.Format)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+s.ext())
}

func (s *Store) marshal(doc *domain.SceneDocument) ([]byte, error) {
	if s.Format == JSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}

func (s *Store) unmarshal(data []byte, doc *domain.SceneDocument) error {
	if s.Format == JSON {
		return json.Unmarshal(data, doc)
	}
	return yaml.Unmarshal(data, doc)
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, name string, doc *domain.SceneDocument) error {
	if name == "" {
		return fmt.Errorf("scene name cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure scene directory: %w", err)
	}

	data, err := s.marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	// Same directory as the destination, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(name)
	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing scene file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to scene file: %w", err)
	}
	return nil
}

// Load retrieves a document.
func (s *Store) Load(ctx context.Context, name string) (*domain.SceneDocument, error) {
	if name == "" {
		return nil, fmt.Errorf("scene name cannot be empty")
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var doc domain.SceneDocument
	if err := s.unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene %q: %w", name, err)
	}
	return &doc, nil
}

// Delete removes the scene file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("scene name cannot be empty")
	}
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete scene file: %w", err)
	}
	return nil
}

// List returns the names of all stored scenes, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != s.ext() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, s.ext()))
	}
	sort.Strings(names)
	return names, nil
}
