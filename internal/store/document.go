package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/p-blackswan/designstore/internal/errors"
)

// Read decodes the JSON document at path into v.
// It returns false with a nil error when the file does not exist; every
// other failure, including malformed JSON, is a *errors.StorageError.
func (s *Store) Read(path string, v any) (bool, error) {
	if data, ok := s.cached(path); ok {
		if err := json.Unmarshal(data, v); err == nil {
			return true, nil
		}
		s.forget(path)
	}

	gen := s.generation(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, perrors.NewStorageError("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.forget(path)
		return false, perrors.NewStorageError("decode", path, err)
	}
	s.rememberRead(path, data, gen)
	return true, nil
}

// Get is Read for a typed document.
func Get[T any](s *Store, path string) (T, bool, error) {
	var doc T
	ok, err := s.Read(path, &doc)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return doc, true, nil
}

// Write replaces the document at path with v encoded as 2-space indented
// JSON, creating the parent directory if needed. The bytes go to a sibling
// temp file that is then renamed over path, so readers never observe a
// truncated document.
func (s *Store) Write(path string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return perrors.NewStorageError("encode", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perrors.NewStorageError("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+tempMarker+"*")
	if err != nil {
		return perrors.NewStorageError("write", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return perrors.NewStorageError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return perrors.NewStorageError("write", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return perrors.NewStorageError("write", path, err)
	}

	s.mu.Lock()
	err = os.Rename(tmpName, path)
	if err != nil {
		s.invalidate(path)
	} else {
		s.replace(path, data)
	}
	s.mu.Unlock()
	if err != nil {
		os.Remove(tmpName)
		return perrors.NewStorageError("rename", path, err)
	}

	s.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("document written")
	return nil
}

// List returns the base names, without extension, of the .json files in
// dir. The order is whatever the directory listing yields. A missing
// directory yields an empty slice.
func (s *Store) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, perrors.NewStorageError("list", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != docExt {
			continue
		}
		names = append(names, strings.TrimSuffix(name, docExt))
	}
	return names, nil
}

// Delete removes the document at path. A missing file is not an error.
func (s *Store) Delete(path string) error {
	s.mu.Lock()
	err := os.Remove(path)
	s.invalidate(path)
	s.mu.Unlock()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perrors.NewStorageError("delete", path, err)
	}
	s.logger.Debug().Str("path", path).Msg("document deleted")
	return nil
}

// Encode renders v the way documents are persisted: 2-space indent, no
// HTML escaping, no trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (s *Store) cached(path string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(path)
}

// generation returns the change count for path. A read takes it before
// touching the file and hands it back to rememberRead.
func (s *Store) generation(path string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[path]
}

// rememberRead caches bytes read from disk unless path was renamed over or
// removed since gen was taken.
func (s *Store) rememberRead(path string, data []byte, gen uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[path] != gen {
		return
	}
	s.cache.Put(path, data)
}

// replace and invalidate require s.mu.
func (s *Store) replace(path string, data []byte) {
	s.gens[path]++
	if s.cache != nil {
		s.cache.Put(path, data)
	}
}

func (s *Store) invalidate(path string) {
	s.gens[path]++
	if s.cache != nil && s.cache.Remove(path) {
		s.logger.Debug().Str("path", path).Int("cached", s.cache.Len()).Msg("cache entry dropped")
	}
}

func (s *Store) forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate(path)
}

const tempMarker = ".tmp-"

// IsTempFile reports whether name is a scratch file created by Write or
// Probe. Such files are hidden and never listed as documents.
func IsTempFile(name string) bool {
	if !strings.HasPrefix(name, ".") {
		return false
	}
	return strings.Contains(name, tempMarker) || strings.HasPrefix(name, ".probe-")
}
