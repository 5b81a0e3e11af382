// Package settings persists the launch configuration, the named profiles
// and the last-active profile name in a single JSON document in the
// user's home directory. Loads fail soft (defaults plus a warning),
// saves are atomic, and unknown top-level keys survive a round trip so
// documents written by other builds of the tool are never mangled.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"sync"

	"github.com/coremaven/llama.cpp-GUI/internal/common/fsutil"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// DefaultPath is the settings document location unless overridden.
const DefaultPath = "~/.llama_server_gui_config.json"

const filePerm = 0o600

// Known top-level document keys. Everything else is preserved verbatim.
const (
	keySettings    = "settings"
	keyProfiles    = "profiles"
	keyLastProfile = "last_profile"
)

// Default returns the launch configuration used when no settings file
// exists yet. Every field has a usable value except the two paths, which
// only the user can supply.
func Default() types.ServerConfig {
	return types.ServerConfig{
		Host:      "127.0.0.1",
		Port:      8080,
		CtxSize:   2048,
		GPULayers: 33,
		Threads:   8,
		BatchSize: 512,
	}
}

type document struct {
	current  types.ServerConfig
	profiles map[string]types.ServerConfig
	last     string
	extra    map[string]json.RawMessage
}

// Store owns the settings document. All methods are safe for concurrent
// use; configurations are passed by value so callers never alias the
// store's state.
type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open loads the document at path ('~' expands to the home directory).
// A missing file yields defaults with a nil error. A damaged file yields
// defaults plus a warning error satisfying IsConfigLoad; the store is
// still usable and the next Save writes a clean document.
func Open(path string) (*Store, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("settings path: %w", err)
	}
	s := &Store{path: p}
	warn := s.load()
	return s, warn
}

// Path returns the expanded location of the settings document.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	doc, warn := readDocument(s.path)
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return warn
}

// Reload re-reads the document from disk, replacing in-memory state.
// It reports whether anything actually changed, so watcher-driven
// reloads after our own saves stay quiet. The error is a load warning,
// never fatal.
func (s *Store) Reload() (changed bool, err error) {
	doc, warn := readDocument(s.path)
	s.mu.Lock()
	changed = !reflect.DeepEqual(s.doc, doc)
	s.doc = doc
	s.mu.Unlock()
	return changed, warn
}

func readDocument(path string) (document, error) {
	doc := document{current: Default(), profiles: map[string]types.ServerConfig{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, NewConfigLoadError("read settings %s: %v (using defaults)", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc, NewConfigLoadError("parse settings %s: %v (using defaults)", path, err)
	}
	var warn error
	for key, val := range raw {
		switch key {
		case keySettings:
			// unmarshal over the defaults so absent fields keep them
			cfg := Default()
			if err := json.Unmarshal(val, &cfg); err != nil {
				warn = NewConfigLoadError("parse %q in %s: %v (using defaults)", keySettings, path, err)
				continue
			}
			doc.current = cfg
		case keyProfiles:
			var rawProfiles map[string]json.RawMessage
			if err := json.Unmarshal(val, &rawProfiles); err != nil {
				warn = NewConfigLoadError("parse %q in %s: %v (ignoring profiles)", keyProfiles, path, err)
				continue
			}
			for name, rawCfg := range rawProfiles {
				cfg := Default()
				if err := json.Unmarshal(rawCfg, &cfg); err != nil {
					warn = NewConfigLoadError("parse profile %q in %s: %v (skipped)", name, path, err)
					continue
				}
				doc.profiles[name] = cfg
			}
		case keyLastProfile:
			var last string
			if err := json.Unmarshal(val, &last); err == nil {
				doc.last = last
			}
		default:
			if doc.extra == nil {
				doc.extra = map[string]json.RawMessage{}
			}
			doc.extra[key] = val
		}
	}
	return doc, warn
}

// Save writes the whole document atomically. Concurrent crashes leave
// either the previous or the new document, never a torn one.
func (s *Store) Save() error {
	s.mu.Lock()
	out := make(map[string]json.RawMessage, len(s.doc.extra)+3)
	for k, v := range s.doc.extra {
		out[k] = v
	}
	var err error
	if out[keySettings], err = marshalRaw(s.doc.current); err == nil {
		if out[keyProfiles], err = marshalRaw(s.doc.profiles); err == nil {
			out[keyLastProfile], err = marshalRaw(s.doc.last)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := fsutil.AtomicWriteFile(s.path, append(data, '\n'), filePerm); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func marshalRaw(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Config returns a copy of the active launch configuration.
func (s *Store) Config() types.ServerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.current
}

// SetConfig replaces the active launch configuration in memory. Callers
// persist with Save.
func (s *Store) SetConfig(cfg types.ServerConfig) {
	s.mu.Lock()
	s.doc.current = cfg
	s.mu.Unlock()
}

// Profiles returns the saved profile names in sorted order.
func (s *Store) Profiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.doc.profiles))
	for name := range s.doc.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns the named snapshot, or a profile-not-found error.
func (s *Store) Profile(name string) (types.ServerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.doc.profiles[name]
	if !ok {
		return types.ServerConfig{}, NewProfileNotFound(name)
	}
	return cfg, nil
}

// SaveProfile stores cfg under name, overwriting any existing snapshot.
func (s *Store) SaveProfile(name string, cfg types.ServerConfig) error {
	if name == "" {
		return fmt.Errorf("profile name is empty")
	}
	s.mu.Lock()
	s.doc.profiles[name] = cfg
	s.doc.last = name
	s.mu.Unlock()
	return nil
}

// LoadProfile copies the named snapshot into the active configuration
// and records it as the last-active profile.
func (s *Store) LoadProfile(name string) (types.ServerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.doc.profiles[name]
	if !ok {
		return types.ServerConfig{}, NewProfileNotFound(name)
	}
	s.doc.current = cfg
	s.doc.last = name
	return cfg, nil
}

// DeleteProfile removes the named snapshot. Deleting an absent name is
// reported as profile-not-found so callers can surface the mismatch.
func (s *Store) DeleteProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doc.profiles[name]; !ok {
		return NewProfileNotFound(name)
	}
	delete(s.doc.profiles, name)
	if s.doc.last == name {
		s.doc.last = ""
	}
	return nil
}

// LastProfile returns the name of the last profile saved or loaded, or
// an empty string.
func (s *Store) LastProfile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.last
}
