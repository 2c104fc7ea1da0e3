// Package updates relays platform update-available events to window
// subscribers.
package updates

import (
	"sync"

	"github.com/nightjar-editor/nightjar/internal/events"
	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/shared/id"
	"go.uber.org/zap"
)

// Info describes an available platform update.
type Info struct {
	ReleaseVersion string `json:"release_version"`
}

// Source is the platform updater port. Subscribe registers a handler
// for update events and returns a cancel function.
type Source interface {
	Subscribe(fn func(Info)) (cancel func())
}

// Listener bridges the platform updater to typed window subscriptions.
type Listener struct {
	source  Source
	emitter *events.Emitter[Info]
	logger  *logging.Logger

	mu        sync.Mutex
	listening bool
	cancel    func()
}

// NewListener creates a listener over the given source. A nil source is
// allowed; ListenForUpdates is then a no-op.
func NewListener(source Source, logger *logging.Logger) *Listener {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Listener{
		source:  source,
		emitter: events.NewEmitter[Info](),
		logger:  logger,
	}
}

// ListenForUpdates starts relaying platform update events. Idempotent.
func (l *Listener) ListenForUpdates() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listening || l.source == nil {
		return
	}
	l.listening = true
	l.cancel = l.source.Subscribe(func(info Info) {
		l.logger.Info("update available",
			zap.String("update_id", id.NewUpdateID().String()),
			zap.String("release_version", info.ReleaseVersion))
		l.emitter.Emit(info)
	})
}

// OnUpdateAvailable subscribes fn to update events.
func (l *Listener) OnUpdateAvailable(fn func(Info)) events.Disposable {
	return l.emitter.On(fn)
}

// Dispose stops listening and drops every subscription. Idempotent.
func (l *Listener) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.listening = false
	l.emitter.Clear()
}
