package project

import (
	"testing"

	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPathSkipsDuplicates(t *testing.T) {
	p := New()

	p.AddPath("/a")
	p.AddPath("/b")
	p.AddPath("/a")

	assert.Equal(t, []string{"/a", "/b"}, p.Paths())
}

func TestPathsReturnsCopy(t *testing.T) {
	p := New()
	p.SetPaths([]string{"/a"})

	paths := p.Paths()
	paths[0] = "/mutated"

	assert.Equal(t, []string{"/a"}, p.Paths())
}

func TestSerializeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := New()
	p.SetPaths([]string{dir})

	state := p.Serialize(false)

	restored := New()
	require.NoError(t, restored.Deserialize(state))
	assert.Equal(t, []string{dir}, restored.Paths())
}

func TestDeserializeReportsMissingDirectories(t *testing.T) {
	existing := t.TempDir()
	p := New()

	err := p.Deserialize(map[string]any{
		"paths": []any{existing, "/no/such/dir", "/also/gone"},
	})

	var missing *types.MissingPathsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"/no/such/dir", "/also/gone"}, missing.Paths)

	// Surviving directories are still applied.
	assert.Equal(t, []string{existing}, p.Paths())
}

func TestDeserializeNilState(t *testing.T) {
	p := New()
	p.SetPaths([]string{"/keep"})

	require.NoError(t, p.Deserialize(nil))
	assert.Equal(t, []string{"/keep"}, p.Paths())
}
