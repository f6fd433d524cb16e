// Package index remembers which calendar event was created for which task so
// a re-published plan updates events instead of duplicating them.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const indexFile = "events.json"

// EventIndex maps task keys (see Key) to Google Calendar event IDs. It is
// persisted as JSON in the config directory and safe for concurrent use.
type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

// Key identifies a task across runs by project and outline number. Task IDs
// are positional and shift when rows are inserted, so they are not used.
func Key(project, outlineNumber string) string {
	return project + "#" + outlineNumber
}

// NewEventIndex opens the index stored in dir, or an empty one if the file
// does not exist yet.
func NewEventIndex(dir string) (*EventIndex, error) {
	idx := &EventIndex{
		Mappings: make(map[string]string),
		Path:     filepath.Join(dir, indexFile),
	}

	if _, err := os.Stat(idx.Path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// Load replaces the in-memory mappings with the contents of Path.
func (idx *EventIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	return json.NewDecoder(f).Decode(&idx.Mappings)
}

// Save writes the index if anything changed since the last load or save.
// The file is replaced by rename, so an interrupted publish leaves the
// previous index intact.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	dir := filepath.Dir(idx.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, indexFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(idx.Mappings); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), idx.Path); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

// Get returns the event ID recorded for key, or "" if there is none.
func (idx *EventIndex) Get(key string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[key]
}

// Set records eventID for key. The index only becomes dirty when the ID
// actually changes.
func (idx *EventIndex) Set(key, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[key] != eventID {
		idx.Mappings[key] = eventID
		idx.dirty = true
	}
}

// Remove forgets key, typically after its event was deleted in the calendar.
func (idx *EventIndex) Remove(key string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[key]; exists {
		delete(idx.Mappings, key)
		idx.dirty = true
	}
}
