package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/namancryu/TravelPMS/logging"
	"gopkg.in/yaml.v3"
)

// Credentials resolves an API key by the name of its environment variable.
// Implementations are consulted on every call so keys can appear or vanish
// while the process runs.
type Credentials interface {
	Lookup(name string) (string, bool)
}

// EnvCredentials reads keys from the process environment.
type EnvCredentials struct{}

// Lookup implements Credentials.
func (EnvCredentials) Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// StaticCredentials is a fixed map, mostly for tests.
type StaticCredentials map[string]string

// Lookup implements Credentials.
func (s StaticCredentials) Lookup(name string) (string, bool) {
	v := strings.TrimSpace(s[name])
	return v, v != ""
}

// ChainCredentials returns the first non-empty key among its sources.
type ChainCredentials []Credentials

// Lookup implements Credentials.
func (c ChainCredentials) Lookup(name string) (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// FileCredentials serves keys from a flat YAML mapping of variable name to
// key, e.g. "GEMINI_API_KEY: AIza...". A missing file means no keys.
type FileCredentials struct {
	path   string
	logger logging.Logger

	mu   sync.RWMutex
	keys map[string]string
}

// NewFileCredentials loads path once.
func NewFileCredentials(path string, logger logging.Logger) (*FileCredentials, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	fc := &FileCredentials{path: path, logger: logger, keys: map[string]string{}}
	if err := fc.Load(); err != nil {
		return nil, err
	}
	return fc, nil
}

// Load re-reads the file.
func (f *FileCredentials) Load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.replace(map[string]string{})
			return nil
		}
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	keys := map[string]string{}
	if err := yaml.Unmarshal(b, &keys); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	f.replace(keys)
	return nil
}

func (f *FileCredentials) replace(keys map[string]string) {
	f.mu.Lock()
	f.keys = keys
	f.mu.Unlock()
}

// Lookup implements Credentials.
func (f *FileCredentials) Lookup(name string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v := strings.TrimSpace(f.keys[name])
	return v, v != ""
}

// Watch reloads the file whenever it changes until ctx is done. The parent
// directory is watched because editors usually replace files by rename.
func (f *FileCredentials) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("credentials watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", f.path, err)
	}
	target := filepath.Clean(f.path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := f.Load(); err != nil {
					f.logger.Warn("credentials reload failed", "path", f.path, "error", err)
					continue
				}
				f.logger.Info("credentials reloaded", "path", f.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("credentials watcher error", "error", err)
			}
		}
	}()
	return nil
}
