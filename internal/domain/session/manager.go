package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/paths"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage"
)

// DefaultTimeout bounds each remote call made by Restore and Save.
const DefaultTimeout = 30 * time.Second

// Reader returns the current bytes of the local artifact.
type Reader func(ctx context.Context) ([]byte, error)

// Manager keeps the chat client's session artifact durable across restarts
// by mirroring it to a remote store. The chat client never sees the store.
type Manager struct {
	store    storage.Store
	location paths.Location
	log      *zap.Logger
	metrics  *monitoring.Metrics
	timeout  time.Duration

	// opMu serializes Restore and Save so each upload is one complete read.
	opMu   sync.Mutex
	reader Reader

	mu          sync.RWMutex
	state       DurabilityState
	lastRestore *Outcome
	lastSave    *Outcome
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithTimeout bounds each remote call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewManager creates a manager for one client identity.
func NewManager(store storage.Store, location paths.Location, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		location: location,
		log:      zap.NewNop(),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.state = StateAbsent
	if m.localExists() {
		m.state = StateLocalOnly
	}
	m.metrics.SetSessionState(m.state.String(), stateNames)
	return m
}

// UseReader makes Save read the artifact through r once the local file
// exists, typically a consistent copy taken by the client holding it open.
// A nil r restores plain file reads.
func (m *Manager) UseReader(r Reader) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.reader = r
}

// Location returns the session location this manager mirrors.
func (m *Manager) Location() paths.Location {
	return m.location
}

// Restore copies the remote artifact over the local path. It must run once,
// before the chat client is constructed. Every failure is non-fatal: the
// client then simply starts without a session and asks for a QR scan.
func (m *Manager) Restore(ctx context.Context) Outcome {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	start := time.Now()
	outcome := m.guard(OpRestore, func() Outcome {
		return m.restore(ctx)
	})
	return m.finish(outcome, start)
}

func (m *Manager) restore(ctx context.Context) Outcome {
	log := m.log.With(zap.String("key", m.location.RemoteKey), zap.String("path", m.location.LocalPath))

	callCtx, cancel := m.callContext(ctx)
	data, err := m.store.Fetch(callCtx, m.location.RemoteKey)
	cancel()
	if err != nil {
		if storage.IsNotFound(err) {
			log.Info("No saved session in remote store, a fresh login will be needed")
			return skipped(OpRestore, ReasonNotFound)
		}
		log.Warn("Could not fetch saved session, continuing without it", zap.Error(err))
		return failed(OpRestore, ReasonFetch, err)
	}

	if err := writeFileAtomic(m.location.LocalPath, data); err != nil {
		log.Warn("Could not write restored session, continuing without it", zap.Error(err))
		return failed(OpRestore, ReasonWrite, err)
	}

	o := succeeded(OpRestore, data)
	log.Info("Restored session from remote store", zap.Int("bytes", o.Bytes), zap.String("sha256", o.Checksum))
	return o
}

// Save uploads the local artifact, replacing the remote copy. A missing
// local file is skipped without touching the store.
func (m *Manager) Save(ctx context.Context) Outcome {
	return m.SaveFor(ctx, "manual")
}

// SaveFor is Save with the milestone that prompted it recorded on the outcome.
func (m *Manager) SaveFor(ctx context.Context, trigger string) Outcome {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	start := time.Now()
	outcome := m.guard(OpSave, func() Outcome {
		return m.save(ctx)
	})
	outcome.Trigger = trigger
	return m.finish(outcome, start)
}

func (m *Manager) save(ctx context.Context) Outcome {
	log := m.log.With(zap.String("key", m.location.RemoteKey), zap.String("path", m.location.LocalPath))

	data, err := m.readLocal(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("No local session file to back up yet")
			return skipped(OpSave, ReasonLocalMissing)
		}
		log.Warn("Could not read local session file", zap.Error(err))
		return failed(OpSave, ReasonRead, err)
	}

	callCtx, cancel := m.callContext(ctx)
	err = m.store.Upload(callCtx, m.location.RemoteKey, data)
	cancel()
	if err != nil {
		log.Warn("Could not back up session, will retry at the next milestone", zap.Error(err))
		return failed(OpSave, ReasonUpload, err)
	}

	o := succeeded(OpSave, data)
	log.Info("Backed up session to remote store", zap.Int("bytes", o.Bytes), zap.String("sha256", o.Checksum))
	return o
}

func (m *Manager) readLocal(ctx context.Context) ([]byte, error) {
	if m.reader == nil {
		return os.ReadFile(m.location.LocalPath)
	}
	if _, err := os.Stat(m.location.LocalPath); err != nil {
		return nil, err
	}
	readCtx, cancel := m.callContext(ctx)
	defer cancel()
	return m.reader(readCtx)
}

// HandleEvent applies the milestone policy: authentication and readiness
// may have rewritten the artifact, so they trigger a save. A revoked login
// does too, so the discarded device replaces the remote copy and is never
// restored again. Other events are ignored and report false.
func (m *Manager) HandleEvent(ctx context.Context, event chat.Event) (Outcome, bool) {
	if !event.ChangesSession() {
		return Outcome{}, false
	}
	trigger := event.Kind.String()
	if event.Reset {
		trigger = TriggerLoggedOut
	}
	return m.SaveFor(ctx, trigger), true
}

// State returns the current durability state.
func (m *Manager) State() DurabilityState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot is the manager's status for operators.
type Snapshot struct {
	State       DurabilityState `json:"state"`
	Backend     string          `json:"backend"`
	LocalPath   string          `json:"local_path"`
	RemoteKey   string          `json:"remote_key"`
	LastRestore *Outcome        `json:"last_restore,omitempty"`
	LastSave    *Outcome        `json:"last_save,omitempty"`
}

// Snapshot returns a copy of the current status.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		State:     m.state,
		Backend:   m.store.Name(),
		LocalPath: m.location.LocalPath,
		RemoteKey: m.location.RemoteKey,
	}
	if m.lastRestore != nil {
		o := *m.lastRestore
		snap.LastRestore = &o
	}
	if m.lastSave != nil {
		o := *m.lastSave
		snap.LastSave = &o
	}
	return snap
}

func (m *Manager) finish(o Outcome, start time.Time) Outcome {
	o.At = time.Now()
	o.Duration = o.At.Sub(start)
	exists := m.localExists()

	m.mu.Lock()
	prev := m.state
	m.state = next(m.state, o, exists)
	current := m.state
	if o.Op == OpRestore {
		m.lastRestore = &o
	} else {
		m.lastSave = &o
	}
	m.mu.Unlock()

	if prev != current {
		m.log.Debug("Session durability changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", current),
		)
	}

	switch o.Op {
	case OpRestore:
		m.metrics.RecordRestore(string(o.Status), string(o.Reason), o.Bytes, o.Duration)
	case OpSave:
		m.metrics.RecordSave(string(o.Status), string(o.Reason), o.Trigger, o.Bytes, o.Duration)
	}
	m.metrics.SetSessionState(current.String(), stateNames)
	return o
}

// guard turns a panic inside a store implementation into a failed outcome;
// a lost backup must never take the bridge down.
func (m *Manager) guard(op Op, fn func() Outcome) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("Session operation panicked", zap.String("op", string(op)), zap.Any("panic", r))
			o = failed(op, ReasonPanic, fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}

func (m *Manager) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Manager) localExists() bool {
	info, err := os.Stat(m.location.LocalPath)
	return err == nil && info.Mode().IsRegular()
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move session into place: %w", err)
	}
	return nil
}
