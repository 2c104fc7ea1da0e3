// Package keys derives the storage keys under which window state is
// persisted. A key is a deterministic digest of the ordered set of
// project directories open in a window: the same directories in the same
// order always map to the same saved session, and any change to either
// the directories or their order maps to a different one.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// pathSeparator joins paths before hashing. A newline cannot occur in a
// filesystem path on the supported platforms, so joined sequences remain
// unambiguous ("/a" + "/bc" never collides with "/a/b" + "c").
const pathSeparator = "\n"

// Deriver computes state keys from project directory sequences.
type Deriver struct {
	prefix string
}

// NewDeriver creates a key deriver. The prefix namespaces keys within a
// shared backing store (for example "editor" vs "spec-runner" windows).
func NewDeriver(prefix string) *Deriver {
	return &Deriver{prefix: prefix}
}

// DefaultDeriver returns a deriver with the standard editor namespace.
func DefaultDeriver() *Deriver {
	return NewDeriver("editor")
}

// DeriveKey maps an ordered sequence of project directory paths to an
// opaque storage key. The sequence is significant input: callers that
// want key stability across sessions must pass directories in a stable
// order. DeriveKey is total; an empty sequence yields the key of the
// pathless window.
func (d *Deriver) DeriveKey(paths []string) string {
	joined := strings.Join(paths, pathSeparator)
	sum := sha256.Sum256([]byte(joined))
	digest := hex.EncodeToString(sum[:])
	if d.prefix == "" {
		return digest
	}
	return d.prefix + ":" + digest
}
