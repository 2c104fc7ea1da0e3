package types

import "time"

// SnapshotSchemaVersion identifies the layout of persisted snapshots.
// Snapshots saved with a different version are treated as absent rather
// than deserialized into an incompatible environment.
const SnapshotSchemaVersion = 1

// Snapshot is the complete serialized state of one editor window, keyed
// by the set of project directories it had open. The project, workspace
// and editor-registry payloads are opaque to the persistence layer; they
// are produced and consumed only by their owning collaborators.
type Snapshot struct {
	Version        int            `json:"version"`
	ProjectPaths   []string       `json:"project_paths"`
	Project        map[string]any `json:"project"`
	Workspace      map[string]any `json:"workspace,omitempty"`
	EditorRegistry map[string]any `json:"editor_registry,omitempty"`
	SavedAt        time.Time      `json:"saved_at"`
}

// Location is one entry of an open request, typically received over IPC
// from a second invocation of the editor.
type Location struct {
	PathToOpen       string `json:"path_to_open"`
	ForceAddToWindow bool   `json:"force_add_to_window,omitempty"`
}

// ConfirmRequest asks the window layer to present a blocking binary
// choice. The response is the index of the chosen button.
type ConfirmRequest struct {
	Message         string   `json:"message"`
	DetailedMessage string   `json:"detailed_message,omitempty"`
	Buttons         []string `json:"buttons"`
}

// OpenWindowRequest spawns a new editor window process.
type OpenWindowRequest struct {
	WindowID    string   `json:"window_id"`
	PathsToOpen []string `json:"paths_to_open"`
	NewWindow   bool     `json:"new_window"`
	DevMode     bool     `json:"dev_mode"`
	SafeMode    bool     `json:"safe_mode"`
}

// SaveOptions qualifies a state save. IsUnloading marks a save that
// precedes window teardown, which is best-effort: failures are logged
// but never surfaced to the unload path.
type SaveOptions struct {
	IsUnloading bool `json:"is_unloading"`
}
