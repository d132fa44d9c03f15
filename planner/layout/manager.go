package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Manager handles layout loading and caching
type Manager struct {
	dir           string
	defaultLayout *Layout
	layouts       map[string]*Layout
	mu            sync.RWMutex
}

// NewManager creates a layout manager over dir. The directory must exist.
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layout directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:     dir,
		layouts: make(map[string]*Layout),
	}
	m.defaultLayout = m.resolveDefault()
	return m, nil
}

// Dir returns the directory the manager reads from.
func (m *Manager) Dir() string { return m.dir }

// Load returns the layout stored as <name>.json.
func (m *Manager) Load(name string) (*Layout, error) {
	name = strings.TrimSuffix(name, ".json")
	if !validID(name) {
		return nil, fmt.Errorf("%w: %q", ErrLayoutNotFound, name)
	}

	m.mu.RLock()
	if l, exists := m.layouts[name]; exists {
		m.mu.RUnlock()
		return l, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if l, exists := m.layouts[name]; exists {
		return l, nil
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrLayoutNotFound, name)
		}
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := Validate(&l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	m.layouts[name] = &l
	return &l, nil
}

// List describes every valid layout in the directory, sorted by ID. Invalid
// files are skipped with a warning.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout directory: %w", err)
	}

	var infos []*Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")

		l, err := m.Load(id)
		if err != nil {
			log.WithField("layout", id).Warnf("skipping layout: %v", err)
			continue
		}

		infos = append(infos, &Info{
			Filename:    entry.Name(),
			LayoutID:    id,
			Name:        l.Name,
			Description: l.Description,
			Width:       l.Width(),
			Height:      l.Height(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].LayoutID < infos[j].LayoutID })
	return infos, nil
}

// Default returns the default layout
func (m *Manager) Default() *Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLayout
}

// SetDefault makes the named layout the default.
func (m *Manager) SetDefault(name string) error {
	l, err := m.Load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLayout = l
	return nil
}

// RefreshCache drops every cached layout and re-resolves the default from
// disk.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.layouts = make(map[string]*Layout)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultLayout = def
	m.mu.Unlock()
}

// Save validates l and writes it as <name>.json.
func (m *Manager) Save(name string, l *Layout) error {
	name = strings.TrimSuffix(name, ".json")
	if !validID(name) {
		return fmt.Errorf("%w: bad layout id %q", ErrInvalidLayout, name)
	}
	if err := Validate(l); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}

	m.mu.Lock()
	m.layouts[name] = l
	m.mu.Unlock()

	log.WithField("layout", name).Info("layout saved")
	return nil
}

// resolveDefault picks classic, then the first valid layout, then the
// built-in minimal layout. It must be called without m.mu held.
func (m *Manager) resolveDefault() *Layout {
	if l, err := m.Load("classic"); err == nil {
		return l
	}

	infos, err := m.List()
	if err != nil || len(infos) == 0 {
		return minimalLayout()
	}
	l, err := m.Load(infos[0].LayoutID)
	if err != nil {
		return minimalLayout()
	}
	return l
}

// validID rejects names that would escape the layout directory.
func validID(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
