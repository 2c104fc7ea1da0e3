// Package notify consolidates partial-deserialization failures into
// single user-facing notifications.
package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/shared/id"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"go.uber.org/zap"
)

// Notifier is the notification-center port consumed by the aggregator.
type Notifier interface {
	AddError(title string, description string)
}

// ProjectDeserializer restores project state. A failure caused by
// project directories missing from disk is reported as
// *types.MissingPathsError.
type ProjectDeserializer interface {
	Deserialize(state map[string]any) error
}

// Aggregator wraps project deserialization and converts every failure
// into at most one notification. It never propagates the failure: the
// rest of deserialization (workspace, editor registry) is unaffected.
type Aggregator struct {
	project  ProjectDeserializer
	notifier Notifier
	logger   *logging.Logger
	onNotify func()
}

// NewAggregator creates an aggregator around the given project port.
func NewAggregator(project ProjectDeserializer, notifier Notifier, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{project: project, notifier: notifier, logger: logger}
}

// OnNotify registers a hook fired once per emitted notification, used
// for metrics.
func (a *Aggregator) OnNotify(fn func()) {
	a.onNotify = fn
}

// DeserializeProject delegates to the project collaborator and reports
// missing directories as one consolidated notification.
func (a *Aggregator) DeserializeProject(state map[string]any) {
	err := a.project.Deserialize(state)
	if err == nil {
		return
	}

	var missing *types.MissingPathsError
	if errors.As(err, &missing) && len(missing.Paths) > 0 {
		a.notify(missing.Paths)
		return
	}

	// Anything else is swallowed too; deserialization failures must not
	// crash the caller.
	a.logger.Error("project deserialization failed", zap.Error(err))
}

func (a *Aggregator) notify(paths []string) {
	title := notificationTitle(len(paths))
	description := notificationDescription(paths)

	a.logger.Warn("project directories missing on restore",
		zap.String("notification_id", id.NewNotificationID().String()),
		zap.Strings("paths", paths))

	if a.notifier != nil {
		a.notifier.AddError(title, description)
	}
	if a.onNotify != nil {
		a.onNotify()
	}
}

func notificationTitle(count int) string {
	if count == 1 {
		return "Unable to open project directory"
	}
	return fmt.Sprintf("Unable to open %d project directories", count)
}

func notificationDescription(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = "`" + p + "`"
	}

	if len(quoted) == 1 {
		return fmt.Sprintf("Project directory %s is no longer on disk.", quoted[0])
	}
	return fmt.Sprintf("Project directories %s are no longer on disk.", joinWithAnd(quoted))
}

// joinWithAnd joins items as prose: two items with a bare "and", three
// or more with commas and an Oxford comma before the final "and".
func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
