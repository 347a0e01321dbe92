package transcript

import (
	"fmt"
	"sync"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// Transcript is an ordered, append-only sequence of entries. Insertion order
// is chronological order; entries are never reordered or removed.
// It is safe for concurrent use.
type Transcript struct {
	mu      sync.RWMutex
	entries []*Entry
	index   map[string]int
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{
		index: make(map[string]int),
	}
}

// Append links msg to the current head and returns the new entry.
func (t *Transcript) Append(msg llm.Message) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var head *Entry
	if n := len(t.entries); n > 0 {
		head = t.entries[n-1]
	}

	entry := NewEntry(msg, head)
	t.index[entry.Hash] = len(t.entries)
	t.entries = append(t.entries, entry)
	return entry
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Head returns the most recent entry, or nil for an empty transcript.
func (t *Transcript) Head() *Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[len(t.entries)-1]
}

// Entries returns a snapshot of all entries, oldest first.
func (t *Transcript) Entries() []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Messages returns a snapshot of all messages, oldest first.
func (t *Transcript) Messages() []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]llm.Message, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Message
	}
	return out
}

// Get retrieves an entry by its hash.
func (t *Transcript) Get(hash string) (*Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[hash]
	if !ok {
		return nil, ErrNotFound{Hash: hash}
	}
	return t.entries[i], nil
}

// Since returns the entries appended after the entry with the given hash.
// An empty hash returns every entry.
func (t *Transcript) Since(hash string) ([]*Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := 0
	if hash != "" {
		i, ok := t.index[hash]
		if !ok {
			return nil, ErrNotFound{Hash: hash}
		}
		start = i + 1
	}

	out := make([]*Entry, len(t.entries)-start)
	copy(out, t.entries[start:])
	return out, nil
}

// Verify walks the chain and checks every hash and parent link.
func (t *Transcript) Verify() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var prev *Entry
	for i, e := range t.entries {
		if !e.Valid() {
			return fmt.Errorf("entry %d: hash mismatch", i)
		}
		switch {
		case prev == nil && e.ParentHash != nil:
			return fmt.Errorf("entry %d: first entry has a parent", i)
		case prev != nil && (e.ParentHash == nil || *e.ParentHash != prev.Hash):
			return fmt.Errorf("entry %d: broken parent link", i)
		}
		prev = e
	}
	return nil
}

// ErrNotFound is returned when an entry doesn't exist in the transcript.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "entry not found"
	}

	return "entry not found: " + e.Hash
}
