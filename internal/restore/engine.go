// Package restore decides what to do with previously saved window state
// when a set of directories and files is requested: restore it silently,
// ask the user, or fall through to a plain open.
package restore

import (
	"context"

	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/shared/id"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"go.uber.org/zap"
)

// Outcome is the result of one restoration attempt.
type Outcome string

const (
	RestoredSilently  Outcome = "restored-silently"
	PromptedAndMerged Outcome = "prompted-and-merged"
	PromptedNewWindow Outcome = "prompted-new-window"
	NoSavedState      Outcome = "no-saved-state"
)

// Confirm button indices presented to the user on a dirty window.
const (
	ButtonUseCurrentWindow = 0
	ButtonOpenNewWindow    = 1
)

// Editor is a single open text editor, inspected for cleanliness.
type Editor interface {
	// Path returns the file backing the editor, empty when unnamed.
	Path() string
	IsModified() bool
}

// DockItem is an item hosted in a side dock. Items that are modified or
// cannot be serialized block an automatic restore.
type DockItem interface {
	IsModified() bool
	IsRestorable() bool
}

// Workspace is the view-model port consumed by the engine.
type Workspace interface {
	Open(ctx context.Context, path string) error
	TextEditors() []Editor
	DockItems() []DockItem
}

// Project is the project-model port consumed by the engine. AddPath
// skips duplicates against existing paths.
type Project interface {
	Paths() []string
	AddPath(path string)
}

// WindowControl prompts the user and spawns new window processes.
type WindowControl interface {
	Confirm(ctx context.Context, req types.ConfirmRequest) (int, error)
	Open(ctx context.Context, req types.OpenWindowRequest) error
}

// StateApplier replaces the current project/workspace/editor-registry
// state with a saved snapshot.
type StateApplier func(ctx context.Context, snap *types.Snapshot)

// Settings configures the engine.
type Settings struct {
	Project   Project
	Workspace Workspace
	Windows   WindowControl
	Apply     StateApplier
	DevMode   bool
	SafeMode  bool
	Logger    *logging.Logger
	// OnOutcome is called once per attempt with the decision, used for
	// metrics.
	OnOutcome func(Outcome)
}

// Engine implements the restoration decision procedure.
type Engine struct {
	settings Settings
	logger   *logging.Logger
}

// NewEngine creates a decision engine.
func NewEngine(settings Settings) *Engine {
	logger := settings.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{settings: settings, logger: logger}
}

// AttemptRestore reconciles saved state against the requested directory
// and file set. A nil snap means no saved state exists for the computed
// key: the paths are added and files opened without any prompt.
func (e *Engine) AttemptRestore(ctx context.Context, snap *types.Snapshot, requestedPaths, filesToOpen []string) (Outcome, error) {
	if snap == nil {
		e.addPathsAndOpenFiles(ctx, requestedPaths, filesToOpen)
		return e.outcome(NoSavedState), nil
	}

	if e.windowIsClean() {
		e.settings.Apply(ctx, snap)
		e.openFiles(ctx, filesToOpen)
		return e.outcome(RestoredSilently), nil
	}

	choice, err := e.settings.Windows.Confirm(ctx, types.ConfirmRequest{
		Message: "This window already has modified or unsaveable items.",
		DetailedMessage: "The requested project has saved state. Open it in a new window, " +
			"or keep this window and discard the saved state?",
		Buttons: []string{"Use current window", "Open new window"},
	})
	if err != nil {
		return "", err
	}

	if choice == ButtonOpenNewWindow {
		// The discarded snapshot is never applied to this window; the
		// new process loads it for itself by key.
		pathsToOpen := make([]string, 0, len(requestedPaths)+len(filesToOpen))
		pathsToOpen = append(pathsToOpen, requestedPaths...)
		pathsToOpen = append(pathsToOpen, filesToOpen...)

		req := types.OpenWindowRequest{
			WindowID:    id.NewWindowID().String(),
			PathsToOpen: pathsToOpen,
			NewWindow:   true,
			DevMode:     e.settings.DevMode,
			SafeMode:    e.settings.SafeMode,
		}
		if err := e.settings.Windows.Open(ctx, req); err != nil {
			return "", err
		}
		return e.outcome(PromptedNewWindow), nil
	}

	e.addPathsAndOpenFiles(ctx, requestedPaths, filesToOpen)
	return e.outcome(PromptedAndMerged), nil
}

// windowIsClean reports whether the current window can absorb saved
// state without losing anything: no project paths assigned, every open
// editor unnamed and unmodified, and no dock holding a modified or
// non-restorable item.
func (e *Engine) windowIsClean() bool {
	if len(e.settings.Project.Paths()) > 0 {
		return false
	}
	for _, editor := range e.settings.Workspace.TextEditors() {
		if editor == nil {
			continue
		}
		if editor.Path() != "" || editor.IsModified() {
			return false
		}
	}
	for _, item := range e.settings.Workspace.DockItems() {
		if item.IsModified() || !item.IsRestorable() {
			return false
		}
	}
	return true
}

func (e *Engine) addPathsAndOpenFiles(ctx context.Context, paths, files []string) {
	for _, p := range paths {
		e.settings.Project.AddPath(p)
	}
	e.openFiles(ctx, files)
}

func (e *Engine) openFiles(ctx context.Context, files []string) {
	for _, f := range files {
		if err := e.settings.Workspace.Open(ctx, f); err != nil {
			e.logger.Warn("failed to open file", zap.String("path", f), zap.Error(err))
		}
	}
}

func (e *Engine) outcome(o Outcome) Outcome {
	if e.settings.OnOutcome != nil {
		e.settings.OnOutcome(o)
	}
	return o
}
