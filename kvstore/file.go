package kvstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FileStore keeps every key in one JSON object on disk. A write goes to a
// temporary file in the same directory which is then renamed over the
// document, so readers see either the previous or the new content.
type FileStore struct {
	path string
	log  logrus.FieldLogger

	mu   sync.Mutex
	data map[string]string
}

// NewFileStore returns a store backed by the document at path. Nothing is
// read until Initialize or the first Get/Set.
func NewFileStore(path string, log logrus.FieldLogger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Initialize creates the parent directory and loads the document.
func (f *FileStore) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrapf(err, "kvstore: create directory for %s", f.path)
	}
	if err := f.load(); err != nil {
		return err
	}
	f.log.WithField("path", f.path).WithField("keys", len(f.data)).Info("FileStore initialized")
	return nil
}

func (f *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureLoaded(); err != nil {
		return "", false, err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

// Set writes the whole document. The in-memory copy only changes once the
// file is on disk.
func (f *FileStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureLoaded(); err != nil {
		return err
	}

	next := make(map[string]string, len(f.data)+1)
	for k, v := range f.data {
		next[k] = v
	}
	next[key] = value

	if err := f.write(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

// Ping reports whether the directory holding the document is reachable.
func (f *FileStore) Ping(ctx context.Context) bool {
	info, err := os.Stat(filepath.Dir(f.path))
	return err == nil && info.IsDir()
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) ensureLoaded() error {
	if f.data != nil {
		return nil
	}
	return f.load()
}

func (f *FileStore) load() error {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.data = make(map[string]string)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "kvstore: read %s", f.path)
	}

	data := make(map[string]string)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return errors.Wrapf(err, "kvstore: parse %s", f.path)
		}
	}
	f.data = data
	return nil
}

func (f *FileStore) write(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "kvstore: encode document")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+"-*")
	if err != nil {
		return errors.Wrap(err, "kvstore: create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "kvstore: write %s", tmp.Name())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "kvstore: sync %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "kvstore: close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "kvstore: replace %s", f.path)
	}
	return nil
}
