// Package headless provides daemon-mode implementations of the window
// collaborator ports. The daemon has no renderer, so the workspace is a
// plain document list, prompts resolve to their default button, and
// spawned-window requests are logged for the supervising process.
package headless

import (
	"context"
	"sync"

	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/restore"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"go.uber.org/zap"
)

// Workspace tracks opened documents without rendering them.
type Workspace struct {
	mu    sync.Mutex
	items []string
}

// NewWorkspace creates an empty headless workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Open records path as an opened document.
func (w *Workspace) Open(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = append(w.items, path)
	return nil
}

// Items returns the opened document paths in open order.
func (w *Workspace) Items() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, len(w.items))
	copy(out, w.items)
	return out
}

// TextEditors returns nil; a headless workspace holds no live editors,
// so the window always counts as clean for restoration.
func (w *Workspace) TextEditors() []restore.Editor { return nil }

// DockItems returns nil for the same reason.
func (w *Workspace) DockItems() []restore.DockItem { return nil }

// Serialize captures the document list.
func (w *Workspace) Serialize() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()

	items := make([]any, len(w.items))
	for i, p := range w.items {
		items[i] = p
	}
	return map[string]any{"items": items}
}

// Deserialize replaces the document list with a saved one.
func (w *Workspace) Deserialize(state map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = nil
	raw, ok := state["items"].([]any)
	if !ok {
		return
	}
	for _, v := range raw {
		if p, ok := v.(string); ok {
			w.items = append(w.items, p)
		}
	}
}

// Windows resolves prompts without a user and logs window-spawn
// requests instead of creating OS windows.
type Windows struct {
	logger *logging.Logger

	// DefaultChoice is returned from every Confirm call.
	DefaultChoice int
}

// NewWindows creates a headless window controller.
func NewWindows(logger *logging.Logger) *Windows {
	return &Windows{logger: logger.Named("windows")}
}

// Confirm resolves to the configured default button.
func (w *Windows) Confirm(ctx context.Context, req types.ConfirmRequest) (int, error) {
	w.logger.Info("prompt auto-resolved",
		zap.String("prompt_message", req.Message),
		zap.Int("choice", w.DefaultChoice))
	return w.DefaultChoice, nil
}

// Open logs the spawn request for the supervising process to act on.
func (w *Windows) Open(ctx context.Context, req types.OpenWindowRequest) error {
	w.logger.Info("window spawn requested",
		zap.String("window_id", req.WindowID),
		zap.Strings("paths", req.PathsToOpen),
		zap.Bool("new_window", req.NewWindow))
	return nil
}

// Notifier routes user-facing errors to the daemon log.
type Notifier struct {
	logger *logging.Logger
}

// NewNotifier creates a log-backed notification center.
func NewNotifier(logger *logging.Logger) *Notifier {
	return &Notifier{logger: logger.Named("notifications")}
}

// AddError logs an error notification.
func (n *Notifier) AddError(title, description string) {
	n.logger.Error("notification",
		zap.String("title", title),
		zap.String("description", description))
}
