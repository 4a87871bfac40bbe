package site

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Option names persisted in the options table
const (
	OptionActivePlugins = "active_plugins"
	OptionStylesheet    = "stylesheet"
	OptionTemplate      = "template"
)

// Store persists site options (active plugins, active theme) in SQLite
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the options database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serialises writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS options (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns an option value; missing options return "" and no error
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(name)
}

// Set writes an option value
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(name, value)
}

// ActivePlugins returns the sorted list of active plugin identifiers
func (s *Store) ActivePlugins() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePlugins()
}

// IsPluginActive reports whether a plugin identifier is in the active list
func (s *Store) IsPluginActive(id string) (bool, error) {
	active, err := s.ActivePlugins()
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(active, id)
	return i < len(active) && active[i] == id, nil
}

// SetPluginsActive marks each identifier active or inactive in one write
func (s *Store) SetPluginsActive(ids []string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.activePlugins()
	if err != nil {
		return err
	}

	set := make(map[string]bool, len(current)+len(ids))
	for _, id := range current {
		set[id] = true
	}
	for _, id := range ids {
		if active {
			set[id] = true
		} else {
			delete(set, id)
		}
	}

	list := make([]string, 0, len(set))
	for id := range set {
		list = append(list, id)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.set(OptionActivePlugins, string(data))
}

// ActiveTheme returns the active stylesheet and template slugs
func (s *Store) ActiveTheme() (stylesheet, template string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stylesheet, err = s.get(OptionStylesheet); err != nil {
		return "", "", err
	}
	if template, err = s.get(OptionTemplate); err != nil {
		return "", "", err
	}
	if template == "" {
		template = stylesheet
	}
	return stylesheet, template, nil
}

// SetActiveTheme records the active stylesheet and template slugs
func (s *Store) SetActiveTheme(stylesheet, template string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if template == "" {
		template = stylesheet
	}
	if err := s.set(OptionStylesheet, stylesheet); err != nil {
		return err
	}
	return s.set(OptionTemplate, template)
}

func (s *Store) activePlugins() ([]string, error) {
	raw, err := s.get(OptionActivePlugins)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s option: %w", OptionActivePlugins, err)
	}
	sort.Strings(list)
	return list, nil
}

func (s *Store) get(name string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM options WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query option %s: %w", name, err)
	}
	return value, nil
}

func (s *Store) set(name, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, now,
	)
	if err != nil {
		return fmt.Errorf("persist option %s: %w", name, err)
	}
	return nil
}
