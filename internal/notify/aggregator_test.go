package notify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	titles       []string
	descriptions []string
}

func (f *fakeNotifier) AddError(title, description string) {
	f.titles = append(f.titles, title)
	f.descriptions = append(f.descriptions, description)
}

type failingProject struct {
	err error
}

func (p *failingProject) Deserialize(state map[string]any) error {
	return p.err
}

func TestMissingPathNotifications(t *testing.T) {
	tests := []struct {
		name            string
		paths           []string
		wantTitle       string
		wantDescription string
	}{
		{
			name:            "single path",
			paths:           []string{"/foo"},
			wantTitle:       "Unable to open project directory",
			wantDescription: "Project directory `/foo` is no longer on disk.",
		},
		{
			name:            "two paths",
			paths:           []string{"/foo", "/wat"},
			wantTitle:       "Unable to open 2 project directories",
			wantDescription: "Project directories `/foo` and `/wat` are no longer on disk.",
		},
		{
			name:            "four paths",
			paths:           []string{"/foo", "/wat", "/stuff", "/things"},
			wantTitle:       "Unable to open 4 project directories",
			wantDescription: "Project directories `/foo`, `/wat`, `/stuff`, and `/things` are no longer on disk.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			project := &failingProject{err: types.NewMissingPathsError(tt.paths)}
			agg := NewAggregator(project, notifier, nil)

			agg.DeserializeProject(map[string]any{"paths": tt.paths})

			require.Len(t, notifier.titles, 1, "exactly one notification")
			assert.Equal(t, tt.wantTitle, notifier.titles[0])
			assert.Equal(t, tt.wantDescription, notifier.descriptions[0])
		})
	}
}

func TestWrappedMissingPathsErrorIsDetected(t *testing.T) {
	notifier := &fakeNotifier{}
	wrapped := fmt.Errorf("restoring project: %w", types.NewMissingPathsError([]string{"/gone"}))
	agg := NewAggregator(&failingProject{err: wrapped}, notifier, nil)

	agg.DeserializeProject(nil)

	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Unable to open project directory", notifier.titles[0])
}

func TestSuccessEmitsNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	agg := NewAggregator(&failingProject{err: nil}, notifier, nil)

	agg.DeserializeProject(map[string]any{})

	assert.Empty(t, notifier.titles)
}

func TestUnrelatedErrorIsSwallowedWithoutNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	agg := NewAggregator(&failingProject{err: errors.New("corrupt state")}, notifier, nil)

	// Must not panic and must not notify; the failure is logged only.
	agg.DeserializeProject(nil)

	assert.Empty(t, notifier.titles)
}

func TestOnNotifyHookFiresOncePerNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	agg := NewAggregator(&failingProject{err: types.NewMissingPathsError([]string{"/a", "/b"})}, notifier, nil)

	var hooks int
	agg.OnNotify(func() { hooks++ })

	agg.DeserializeProject(nil)
	assert.Equal(t, 1, hooks)
}
