// Package transcript is an append-only, hash-chained record of a conversation.
package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// Entry is a single content-addressed message in a transcript.
type Entry struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous entry hash.
	// This will be nil for the first entry.
	ParentHash *string `json:"parent_hash"`

	// Message is the hashable content for the entry
	Message llm.Message `json:"message"`
}

// NewEntry creates a new entry with the computed hash for the provided message
func NewEntry(msg llm.Message, parent *Entry) *Entry {
	e := &Entry{
		Message: msg,
	}

	if parent != nil {
		p := parent.Hash
		e.ParentHash = &p
	}

	e.Hash = e.computeHash()
	return e
}

type input struct {
	Message llm.Message `json:"message"`
	Parent  string      `json:"parent,omitempty"`
}

// computeHash calculates the content-addressed hash for an entry
func (e *Entry) computeHash() string {
	i := &input{
		Message: e.Message,
	}

	if e.ParentHash != nil {
		i.Parent = *e.ParentHash
	}

	// Canonical JSON encoding for deterministic hashing
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Valid reports whether the stored hash matches the entry's content.
func (e *Entry) Valid() bool {
	return e.Hash == e.computeHash()
}
