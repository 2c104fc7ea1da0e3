// Package id provides centralized ID generation for the environment core.
//
// IDs are prefixed ULIDs: lexicographically sortable, unique across
// windows, and readable in logs (win_*, note_*, upd_*).
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowID identifies an editor window process.
type WindowID string

// NotificationID identifies a user-facing notification.
type NotificationID string

// UpdateID identifies a platform update event.
type UpdateID string

const (
	WindowPrefix       = "win"
	NotificationPrefix = "note"
	UpdatePrefix       = "upd"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source, useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewWindowID generates a new window ID.
func NewWindowID() WindowID {
	return WindowID(Default().GenerateWithPrefix(WindowPrefix))
}

// NewNotificationID generates a new notification ID.
func NewNotificationID() NotificationID {
	return NotificationID(Default().GenerateWithPrefix(NotificationPrefix))
}

// NewUpdateID generates a new update event ID.
func NewUpdateID() UpdateID {
	return UpdateID(Default().GenerateWithPrefix(UpdatePrefix))
}

func (id WindowID) String() string       { return string(id) }
func (id NotificationID) String() string { return string(id) }
func (id UpdateID) String() string       { return string(id) }
