// Package storage persists application state as a namespaced key-value store.
// Reads degrade to a fallback and writes are best effort: failures are logged
// and never reach the caller.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Store is a key-value store with silent failure semantics.
type Store interface {
	// Get decodes the value stored under key into out. It reports false when
	// the key is missing or cannot be decoded.
	Get(key string, out any) bool
	// Set stores value under key, best effort.
	Set(key string, value any)
}

// GetOr returns the value stored under key, or fallback.
func GetOr[T any](store Store, key string, fallback T) T {
	var value T
	if !store.Get(key, &value) {
		return fallback
	}
	return value
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// FileStore keeps one YAML document per key under a directory.
type FileStore struct {
	mu        sync.Mutex
	dir       string
	namespace string
	logger    *zap.Logger
}

// NewFileStore creates the directory if needed and returns a store writing
// <dir>/<namespace>.<key>.yaml files.
func NewFileStore(dir, namespace string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		dir:       dir,
		namespace: namespace,
		logger:    logger.Named("storage"),
	}, nil
}

// Dir returns the data directory.
func (store *FileStore) Dir() string {
	return store.dir
}

// Get implements Store.
func (store *FileStore) Get(key string, out any) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	path := store.pathFor(key)
	rawData, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			store.logger.Warn("read value", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := decode(rawData, out); err != nil {
		store.logger.Warn("decode value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set implements Store.
func (store *FileStore) Set(key string, value any) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.write(key, value); err != nil {
		store.logger.Warn("write value dropped", zap.String("key", key), zap.Error(err))
	}
}

func (store *FileStore) write(key string, value any) error {
	serialized, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	temp, err := os.CreateTemp(store.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(serialized); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, store.pathFor(key)); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace value file: %w", err)
	}
	return nil
}

func (store *FileStore) pathFor(key string) string {
	safeKey := unsafeKeyChars.ReplaceAllString(key, "_")
	return filepath.Join(store.dir, store.namespace+"."+safeKey+".yaml")
}

// decode rejects empty documents, which yaml.v3 would otherwise accept as a
// zero value.
func decode(rawData []byte, out any) error {
	var node yaml.Node
	if err := yaml.Unmarshal(rawData, &node); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return errors.New("empty document")
	}
	if err := node.Decode(out); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}
