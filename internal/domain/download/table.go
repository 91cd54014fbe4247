// Package download holds the domain model of a batch download run.
package download

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Task is one URL to fetch into a destination directory.
type Task struct {
	URL            string
	DestinationDir string
}

// ProgressEntry tracks the bytes written for one active download.
// Total is zero when the server did not declare a length.
type ProgressEntry struct {
	Done  int64
	Total int64
}

// Known reports whether the total size is known.
func (e ProgressEntry) Known() bool {
	return e.Total > 0
}

// Fraction returns Done/Total clamped to [0, 1], or 0 when the total is unknown.
func (e ProgressEntry) Fraction() float64 {
	if !e.Known() {
		return 0
	}
	f := float64(e.Done) / float64(e.Total)
	if f > 1 {
		return 1
	}
	return f
}

// ProgressTable maps claimed filenames to their progress, in claim order.
// It is not safe for concurrent use; callers guard it with their own lock.
type ProgressTable struct {
	entries *orderedmap.OrderedMap[string, *ProgressEntry]
}

// NewProgressTable creates an empty table.
func NewProgressTable() *ProgressTable {
	return &ProgressTable{entries: orderedmap.New[string, *ProgressEntry]()}
}

// Has reports whether name is currently claimed.
func (t *ProgressTable) Has(name string) bool {
	_, ok := t.entries.Get(name)
	return ok
}

// Claim registers name with the given total. It returns false if name is
// already active.
func (t *ProgressTable) Claim(name string, total int64) bool {
	if t.Has(name) {
		return false
	}
	if total < 0 {
		total = 0
	}
	t.entries.Set(name, &ProgressEntry{Total: total})
	return true
}

// Advance adds n bytes to name's entry.
func (t *ProgressTable) Advance(name string, n int64) error {
	entry, ok := t.entries.Get(name)
	if !ok {
		return ErrUnknownEntry
	}
	if n <= 0 {
		return nil
	}
	if entry.Known() && entry.Done+n > entry.Total {
		return ErrLengthExceeded
	}
	entry.Done += n
	return nil
}

// Get returns a copy of name's entry.
func (t *ProgressTable) Get(name string) (ProgressEntry, bool) {
	entry, ok := t.entries.Get(name)
	if !ok {
		return ProgressEntry{}, false
	}
	return *entry, true
}

// Remove drops name from the table. Removing an unknown name is a no-op.
func (t *ProgressTable) Remove(name string) {
	t.entries.Delete(name)
}

// Len returns the number of active entries.
func (t *ProgressTable) Len() int {
	return t.entries.Len()
}

// Views returns the active entries in claim order.
func (t *ProgressTable) Views() []EntryView {
	views := make([]EntryView, 0, t.entries.Len())
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		views = append(views, EntryView{Name: pair.Key, ProgressEntry: *pair.Value})
	}
	return views
}
