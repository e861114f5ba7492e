package core

import (
	"slices"
	"sync"
	"time"
)

// WarningsEntry is the last set of warnings shown for a project.
type WarningsEntry struct {
	ImportID  string    `json:"importId,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	Warnings  []string  `json:"warnings"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WarningsBoard holds one warnings slot per project. Every import
// overwrites its project's slot, including with an empty list.
type WarningsBoard struct {
	mu    sync.RWMutex
	slots map[int64]WarningsEntry
	now   func() time.Time
}

// NewWarningsBoard returns an empty board.
func NewWarningsBoard() *WarningsBoard {
	return &WarningsBoard{
		slots: make(map[int64]WarningsEntry),
		now:   time.Now,
	}
}

// Set replaces the project's warnings.
func (b *WarningsBoard) Set(projectID int64, entry WarningsEntry) {
	entry.Warnings = slices.Clone(entry.Warnings)
	if entry.Warnings == nil {
		entry.Warnings = []string{}
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = b.now()
	}

	b.mu.Lock()
	b.slots[projectID] = entry
	b.mu.Unlock()
}

// Get returns the project's warnings. ok is false when nothing was set.
func (b *WarningsBoard) Get(projectID int64) (WarningsEntry, bool) {
	b.mu.RLock()
	entry, ok := b.slots[projectID]
	b.mu.RUnlock()

	if !ok {
		return WarningsEntry{Warnings: []string{}}, false
	}
	entry.Warnings = slices.Clone(entry.Warnings)
	return entry, true
}

// Clear empties the project's slot.
func (b *WarningsBoard) Clear(projectID int64) {
	b.mu.Lock()
	delete(b.slots, projectID)
	b.mu.Unlock()
}
