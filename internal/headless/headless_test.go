package headless

import (
	"context"
	"testing"

	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/restore"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceRoundTrip(t *testing.T) {
	w := NewWorkspace()
	require.NoError(t, w.Open(context.Background(), "/p/a.go"))
	require.NoError(t, w.Open(context.Background(), "/p/b.go"))

	state := w.Serialize()

	restored := NewWorkspace()
	restored.Deserialize(state)
	assert.Equal(t, []string{"/p/a.go", "/p/b.go"}, restored.Items())
}

func TestWorkspaceDeserializeReplacesItems(t *testing.T) {
	w := NewWorkspace()
	require.NoError(t, w.Open(context.Background(), "/old.go"))

	w.Deserialize(map[string]any{"items": []any{"/new.go"}})
	assert.Equal(t, []string{"/new.go"}, w.Items())

	w.Deserialize(map[string]any{})
	assert.Empty(t, w.Items())
}

func TestWorkspaceIsAlwaysClean(t *testing.T) {
	w := NewWorkspace()
	require.NoError(t, w.Open(context.Background(), "/p/a.go"))

	assert.Empty(t, w.TextEditors())
	assert.Empty(t, w.DockItems())
}

func TestWindowsConfirmDefault(t *testing.T) {
	w := NewWindows(logging.NewNop())
	w.DefaultChoice = restore.ButtonOpenNewWindow

	choice, err := w.Confirm(context.Background(), types.ConfirmRequest{Message: "restore?"})
	require.NoError(t, err)
	assert.Equal(t, restore.ButtonOpenNewWindow, choice)
}

func TestWindowsOpenIsLoggedNoop(t *testing.T) {
	w := NewWindows(logging.NewNop())
	err := w.Open(context.Background(), types.OpenWindowRequest{PathsToOpen: []string{"/p"}})
	assert.NoError(t, err)
}
