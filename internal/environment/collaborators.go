package environment

import (
	"context"

	"github.com/nightjar-editor/nightjar/internal/restore"
)

// Project is the project-model port. It owns the ordered list of open
// project directories; the environment only reads snapshots of it.
type Project interface {
	restore.Project
	SetPaths(paths []string)
	Serialize(isUnloading bool) map[string]any
	Deserialize(state map[string]any) error
}

// Workspace is the view-model port: editors, docks, and pane items.
type Workspace interface {
	restore.Workspace
	Serialize() map[string]any
	Deserialize(state map[string]any)
}

// EditorRegistry serializes per-editor settings that live outside the
// workspace tree.
type EditorRegistry interface {
	Serialize() map[string]any
	Deserialize(state map[string]any)
}

// NotificationCenter surfaces user-facing errors.
type NotificationCenter interface {
	AddError(title string, description string)
}

// FolderPicker presents the OS folder-selection dialog. A nil or empty
// result means the user cancelled.
type FolderPicker interface {
	PickFolder(ctx context.Context) ([]string, error)
}

// WindowControl prompts and spawns windows; shared with the restoration
// engine.
type WindowControl = restore.WindowControl

// ProcessEnvLoader refreshes the process environment from the login
// shell during initialization.
type ProcessEnvLoader interface {
	UpdateProcessEnv(ctx context.Context) error
}

// BlobCache persists the compiled-source cache during unload.
type BlobCache interface {
	Save() error
}

// Diagnostics is the default destination for unhandled errors: a
// diagnostic panel plus a script run inside it.
type Diagnostics interface {
	OpenPanel() error
	RunDiagnostic() error
}

// ErrorTrap is the host-level uncaught-error hook. The environment
// installs its handler on initialize and uninstalls it on destroy.
type ErrorTrap interface {
	Install(handler func(*ErrorEvent))
	Uninstall()
}

// ActivitySource delivers qualifying user-input signals (keyboard or
// pointer press) that arm the save scheduler.
type ActivitySource interface {
	OnActivity(fn func()) (cancel func())
}
