// Package environment orchestrates the lifecycle of one editor window:
// initialize, run, save, unload, destroy. It owns the state-store
// connection, derives storage keys from the open project directories,
// and decides between restoring saved state, prompting, and plain opens.
package environment

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nightjar-editor/nightjar/internal/events"
	"github.com/nightjar-editor/nightjar/internal/infrastructure/monitoring"
	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/notify"
	"github.com/nightjar-editor/nightjar/internal/release"
	"github.com/nightjar-editor/nightjar/internal/restore"
	"github.com/nightjar-editor/nightjar/internal/scheduler"
	"github.com/nightjar-editor/nightjar/internal/shared/keys"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"github.com/nightjar-editor/nightjar/internal/statestore"
	"github.com/nightjar-editor/nightjar/internal/updates"
	"go.uber.org/zap"
)

// Options bundles the collaborators and settings of one environment
// instance. Store, Project, Workspace and Windows are required.
type Options struct {
	Store          statestore.Store
	Project        Project
	Workspace      Workspace
	EditorRegistry EditorRegistry
	Notifications  NotificationCenter
	FolderPicker   FolderPicker
	Windows        WindowControl
	Env            ProcessEnvLoader
	BlobCache      BlobCache
	Diagnostics    Diagnostics
	ErrorTrap      ErrorTrap
	Activity       ActivitySource
	UpdateSource   updates.Source

	Version      string
	DevMode      bool
	SafeMode     bool
	SaveDebounce time.Duration
	IdleHost     scheduler.IdleHost

	Logger  *logging.Logger
	Metrics *monitoring.Metrics

	// Deriver overrides the default state-key deriver, mainly in tests.
	Deriver *keys.Deriver
}

// Environment is the lifecycle orchestrator for a single window.
type Environment struct {
	opts    Options
	logger  *logging.Logger
	deriver *keys.Deriver

	engine     *restore.Engine
	aggregator *notify.Aggregator
	scheduler  *scheduler.Scheduler
	updates    *updates.Listener

	didFailAssertion *events.Emitter[*AssertionError]
	willThrowError   *events.Emitter[*ErrorEvent]
	didThrowError    *events.Emitter[*ErrorEvent]

	mu             sync.Mutex
	initialized    bool
	destroyed      bool
	persistEnabled bool
	cancelActivity func()
	trapInstalled  bool
	lastSavedAt    time.Time
	lastRestoredAt time.Time
}

// Stats reports persistence activity, surfaced on the health endpoint.
type Stats struct {
	LastSavedAt    time.Time `json:"last_saved_at"`
	LastRestoredAt time.Time `json:"last_restored_at"`
}

// New wires an environment from its collaborator bundle. No I/O happens
// until Initialize.
func New(opts Options) (*Environment, error) {
	if opts.Store == nil || opts.Project == nil || opts.Workspace == nil || opts.Windows == nil {
		return nil, ErrMissingCollaborator
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Deriver == nil {
		opts.Deriver = keys.DefaultDeriver()
	}

	e := &Environment{
		opts:             opts,
		logger:           opts.Logger.Named("environment"),
		deriver:          opts.Deriver,
		didFailAssertion: events.NewEmitter[*AssertionError](),
		willThrowError:   events.NewEmitter[*ErrorEvent](),
		didThrowError:    events.NewEmitter[*ErrorEvent](),
	}

	e.aggregator = notify.NewAggregator(opts.Project, opts.Notifications, opts.Logger.Named("notify"))
	if opts.Metrics != nil {
		e.aggregator.OnNotify(opts.Metrics.Notifications.Inc)
	}

	e.engine = restore.NewEngine(restore.Settings{
		Project:   opts.Project,
		Workspace: opts.Workspace,
		Windows:   opts.Windows,
		Apply:     e.applySnapshot,
		DevMode:   opts.DevMode,
		SafeMode:  opts.SafeMode,
		Logger:    opts.Logger.Named("restore"),
		OnOutcome: e.recordOutcome,
	})

	e.scheduler = scheduler.New(scheduler.Settings{
		Debounce: opts.SaveDebounce,
		Idle:     opts.IdleHost,
		Save:     e.scheduledSave,
		Logger:   opts.Logger.Named("scheduler"),
	})

	e.updates = updates.NewListener(opts.UpdateSource, opts.Logger.Named("updates"))

	return e, nil
}

// Initialize connects the store, refreshes the process environment,
// installs the error trap and arms the activity listener. Idempotent.
func (e *Environment) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized || e.destroyed {
		return nil
	}

	connected, err := e.opts.Store.Connect(ctx)
	if err != nil {
		e.logger.Warn("state store connect failed; persistence disabled", zap.Error(err))
	}
	e.persistEnabled = connected && err == nil
	if !e.persistEnabled && err == nil {
		// Another window holds the storage lock. Not an error.
		e.logger.Info("state store held by another instance; persistence disabled")
	}
	if e.opts.Metrics != nil {
		if e.persistEnabled {
			e.opts.Metrics.StoreConnected.Set(1)
		} else {
			e.opts.Metrics.StoreConnected.Set(0)
		}
	}

	if e.opts.Env != nil {
		if err := e.opts.Env.UpdateProcessEnv(ctx); err != nil {
			e.logger.Warn("failed to update process environment", zap.Error(err))
		}
	}

	if e.opts.ErrorTrap != nil {
		e.opts.ErrorTrap.Install(e.HandleUncaughtError)
		e.trapInstalled = true
	}

	if e.opts.Activity != nil {
		e.cancelActivity = e.opts.Activity.OnActivity(e.scheduler.NoteActivity)
	}

	e.initialized = true
	return nil
}

// ListenForUpdates starts relaying platform update events.
func (e *Environment) ListenForUpdates() {
	e.updates.ListenForUpdates()
}

// OnUpdateAvailable subscribes to platform update events.
func (e *Environment) OnUpdateAvailable(fn func(updates.Info)) events.Disposable {
	if e.opts.Metrics != nil {
		inner := fn
		fn = func(info updates.Info) {
			e.opts.Metrics.UpdatesAvailable.Inc()
			inner(info)
		}
	}
	return e.updates.OnUpdateAvailable(fn)
}

// NoteActivity forwards a qualifying input signal to the save scheduler.
// Exposed for hosts without an ActivitySource port.
func (e *Environment) NoteActivity() {
	e.scheduler.NoteActivity()
}

// SaveState serializes project, workspace and editor registry and
// persists the snapshot under the key of the current project path set.
// With IsUnloading set the save is best-effort: failures are logged,
// never returned.
func (e *Environment) SaveState(ctx context.Context, opts types.SaveOptions) error {
	start := time.Now()

	snap := e.serializeSnapshot(opts.IsUnloading)
	err := e.persistSnapshot(ctx, snap)

	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordSave(opts.IsUnloading, time.Since(start), err)
	}

	if err != nil {
		e.logger.Error("failed to save window state",
			zap.Bool("unloading", opts.IsUnloading), zap.Error(err))
		if opts.IsUnloading {
			return nil
		}
		if e.opts.Notifications != nil {
			e.opts.Notifications.AddError("Unable to save window state",
				"The session could not be written to the state store.")
		}
		return err
	}
	return nil
}

// LoadState loads the snapshot saved for the current project path set,
// or nil when none exists.
func (e *Environment) LoadState(ctx context.Context) (*types.Snapshot, error) {
	key := e.deriver.DeriveKey(e.opts.Project.Paths())
	return e.loadSnapshot(ctx, key)
}

// Deserialize applies a snapshot to the environment. Missing project
// directories become one consolidated notification; workspace and editor
// registry are restored regardless.
func (e *Environment) Deserialize(ctx context.Context, snap *types.Snapshot) {
	if snap == nil {
		return
	}
	e.applySnapshot(ctx, snap)
}

// AddProjectFolder runs the folder picker and reconciles the choice
// against saved state. Cancelling the picker changes nothing.
func (e *Environment) AddProjectFolder(ctx context.Context) error {
	if e.opts.FolderPicker == nil {
		return nil
	}
	picked, err := e.opts.FolderPicker.PickFolder(ctx)
	if err != nil {
		return err
	}
	if len(picked) == 0 {
		return nil
	}

	key := e.deriver.DeriveKey(picked)
	snap, err := e.loadSnapshot(ctx, key)
	if err != nil {
		return err
	}

	if snap == nil {
		// No saved state for this directory set: plain add, no prompt.
		for _, p := range picked {
			e.opts.Project.AddPath(p)
		}
		return nil
	}

	_, err = e.engine.AttemptRestore(ctx, snap, picked, nil)
	return err
}

// OpenLocations resolves and opens a batch of requested locations,
// typically relayed over IPC from a second invocation of the editor.
func (e *Environment) OpenLocations(ctx context.Context, locations []types.Location) error {
	dirs, files, forceAdd := e.classifyLocations(locations)

	if e.opts.Metrics != nil {
		e.opts.Metrics.OpenLocations.Add(float64(len(locations)))
	}

	if len(e.opts.Project.Paths()) == 0 && len(dirs) > 0 && !forceAdd {
		key := e.deriver.DeriveKey(dirs)
		snap, err := e.loadSnapshot(ctx, key)
		if err != nil {
			return err
		}
		if snap != nil {
			_, err := e.engine.AttemptRestore(ctx, snap, dirs, files)
			return err
		}
	}

	// Merge: directories join the project path list, files open in the
	// workspace; a bare directory is never opened as a workspace item.
	for _, d := range dirs {
		e.opts.Project.AddPath(d)
	}
	for _, f := range files {
		if err := e.opts.Workspace.Open(ctx, f); err != nil {
			e.logger.Warn("failed to open file", zap.String("path", f), zap.Error(err))
		}
	}
	return nil
}

// Unload performs the teardown sequence: stop scheduling saves, take a
// final best-effort save, and flush the blob cache.
func (e *Environment) Unload(ctx context.Context) error {
	e.scheduler.Unload()

	if err := e.SaveState(ctx, types.SaveOptions{IsUnloading: true}); err != nil {
		// Best-effort by contract; SaveState already logged.
		_ = err
	}

	if e.opts.BlobCache != nil {
		if err := e.opts.BlobCache.Save(); err != nil {
			e.logger.Warn("failed to save blob cache", zap.Error(err))
		}
	}
	return nil
}

// Destroy releases every listener and the store connection. Idempotent
// and safe after a partial or failed Initialize.
func (e *Environment) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	cancelActivity := e.cancelActivity
	e.cancelActivity = nil
	trapInstalled := e.trapInstalled
	e.trapInstalled = false
	e.mu.Unlock()

	e.scheduler.Destroy()
	e.updates.Dispose()

	if cancelActivity != nil {
		cancelActivity()
	}
	if trapInstalled && e.opts.ErrorTrap != nil {
		e.opts.ErrorTrap.Uninstall()
	}

	e.didFailAssertion.Clear()
	e.willThrowError.Clear()
	e.didThrowError.Clear()

	if err := e.opts.Store.Close(); err != nil {
		e.logger.Warn("failed to close state store", zap.Error(err))
	}
}

// ReleaseChannel classifies the running build's version.
func (e *Environment) ReleaseChannel() release.Channel {
	return release.ChannelFor(e.opts.Version)
}

// IsReleasedVersion reports whether the running build shipped to users.
func (e *Environment) IsReleasedVersion() bool {
	return release.IsReleased(e.opts.Version)
}

// Scheduler exposes the save scheduler's state for inspection.
func (e *Environment) Scheduler() *scheduler.Scheduler {
	return e.scheduler
}

func (e *Environment) scheduledSave(ctx context.Context, opts types.SaveOptions) error {
	if e.opts.Metrics != nil {
		e.opts.Metrics.ScheduledSaves.Inc()
	}
	return e.SaveState(ctx, opts)
}

func (e *Environment) serializeSnapshot(isUnloading bool) *types.Snapshot {
	snap := &types.Snapshot{
		Version:      types.SnapshotSchemaVersion,
		ProjectPaths: e.opts.Project.Paths(),
		Project:      e.opts.Project.Serialize(isUnloading),
		Workspace:    e.opts.Workspace.Serialize(),
		SavedAt:      time.Now(),
	}
	if e.opts.EditorRegistry != nil {
		snap.EditorRegistry = e.opts.EditorRegistry.Serialize()
	}
	return snap
}

func (e *Environment) persistSnapshot(ctx context.Context, snap *types.Snapshot) error {
	e.mu.Lock()
	enabled := e.persistEnabled
	e.mu.Unlock()
	if !enabled {
		e.logger.Debug("persistence disabled; skipping save")
		return nil
	}

	blob, err := sonic.Marshal(snap)
	if err != nil {
		return err
	}
	key := e.deriver.DeriveKey(snap.ProjectPaths)
	if err := e.opts.Store.Save(ctx, key, blob); err != nil {
		return err
	}

	e.mu.Lock()
	e.lastSavedAt = time.Now()
	e.mu.Unlock()
	return nil
}

// Stats returns persistence activity timestamps.
func (e *Environment) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{LastSavedAt: e.lastSavedAt, LastRestoredAt: e.lastRestoredAt}
}

func (e *Environment) loadSnapshot(ctx context.Context, key string) (*types.Snapshot, error) {
	e.mu.Lock()
	enabled := e.persistEnabled
	e.mu.Unlock()
	if !enabled {
		return nil, nil
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.StateLoads.Inc()
	}

	blob, found, err := e.opts.Store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var snap types.Snapshot
	if err := sonic.Unmarshal(blob, &snap); err != nil {
		e.logger.Warn("discarding unreadable saved state", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if snap.Version != types.SnapshotSchemaVersion {
		e.logger.Warn("discarding saved state with incompatible schema",
			zap.String("key", key), zap.Int("version", snap.Version))
		return nil, nil
	}
	return &snap, nil
}

func (e *Environment) applySnapshot(ctx context.Context, snap *types.Snapshot) {
	e.aggregator.DeserializeProject(snap.Project)
	e.opts.Workspace.Deserialize(snap.Workspace)
	if e.opts.EditorRegistry != nil && snap.EditorRegistry != nil {
		e.opts.EditorRegistry.Deserialize(snap.EditorRegistry)
	}

	e.mu.Lock()
	e.lastRestoredAt = time.Now()
	e.mu.Unlock()
}

func (e *Environment) recordOutcome(o restore.Outcome) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordRestore(string(o))
	}
	e.logger.Info("restoration decision", zap.String("outcome", string(o)))
}

// classifyLocations resolves each requested location to a directory or
// file. A path missing from disk falls back to its parent directory, so
// "open this not-yet-created file" opens its containing folder.
func (e *Environment) classifyLocations(locations []types.Location) (dirs, files []string, forceAdd bool) {
	seen := make(map[string]bool)
	for _, loc := range locations {
		if loc.PathToOpen == "" {
			continue
		}
		if loc.ForceAddToWindow {
			forceAdd = true
		}

		path := loc.PathToOpen
		info, err := os.Stat(path)
		switch {
		case err != nil:
			path = parentDir(path)
			if !seen[path] {
				seen[path] = true
				dirs = append(dirs, path)
			}
		case info.IsDir():
			if !seen[path] {
				seen[path] = true
				dirs = append(dirs, path)
			}
		default:
			files = append(files, path)
		}
	}
	return dirs, files, forceAdd
}

// parentDir returns the containing directory of a path that is missing
// from disk.
func parentDir(path string) string {
	return filepath.Dir(path)
}
