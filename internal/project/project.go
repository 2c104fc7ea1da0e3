// Package project implements the project model: the ordered list of
// root directories open in a window, with snapshot serialization that
// detects directories deleted from disk between sessions.
package project

import (
	"os"
	"sync"

	"github.com/nightjar-editor/nightjar/internal/shared/types"
)

// Project holds the ordered set of open project directories. Order is
// significant: state keys derive from it.
type Project struct {
	mu    sync.RWMutex
	paths []string

	// statFn is swappable for tests.
	statFn func(path string) (os.FileInfo, error)
}

// New creates an empty project.
func New() *Project {
	return &Project{statFn: os.Stat}
}

// Paths returns a copy of the current directory list.
func (p *Project) Paths() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

// SetPaths replaces the directory list.
func (p *Project) SetPaths(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paths = make([]string, len(paths))
	copy(p.paths, paths)
}

// AddPath appends a directory, skipping duplicates against existing
// paths. Order of prior entries is preserved.
func (p *Project) AddPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.paths {
		if existing == path {
			return
		}
	}
	p.paths = append(p.paths, path)
}

// Serialize captures the project state for persistence.
func (p *Project) Serialize(isUnloading bool) map[string]any {
	paths := p.Paths()
	entries := make([]any, len(paths))
	for i, path := range paths {
		entries[i] = path
	}
	return map[string]any{
		"paths":     entries,
		"unloading": isUnloading,
	}
}

// Deserialize restores the directory list from a snapshot. Directories
// that no longer exist on disk are dropped and reported together as a
// *types.MissingPathsError; surviving directories are still applied.
func (p *Project) Deserialize(state map[string]any) error {
	if state == nil {
		return nil
	}

	var requested []string
	if raw, ok := state["paths"].([]any); ok {
		for _, entry := range raw {
			if s, ok := entry.(string); ok {
				requested = append(requested, s)
			}
		}
	}

	var surviving, missing []string
	for _, path := range requested {
		info, err := p.statFn(path)
		if err != nil || !info.IsDir() {
			missing = append(missing, path)
			continue
		}
		surviving = append(surviving, path)
	}

	p.SetPaths(surviving)

	if len(missing) > 0 {
		return types.NewMissingPathsError(missing)
	}
	return nil
}
