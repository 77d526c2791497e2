package sentinel

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sentineldb/sentineldb/internal/logger"
	"github.com/sentineldb/sentineldb/internal/metrics"
)

// Engine is the single owner of a store, guard set, decision policy, and
// durability layer. Everything else — CLI, tests — only ever borrows
// an *Engine; there is no shared ownership internally. One mutex serializes every mutating call
// (Commit/Set/Del/SetDecisionPolicy/SetRetentionPolicy/Snapshot); read paths
// rely on the store's own RWMutex instead of this lock.
type Engine struct {
	id  string
	log logger.Logger

	mu             sync.Mutex
	store          *Store
	guards         *GuardSet
	decisionPolicy DecisionPolicy

	wal          *WAL
	walPath      string
	snapshotPath string
	clock        Clock
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the engine's time source, for deterministic
// LastT-retention and recovery tests.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithWAL points the engine at a write-ahead log path. If walPath is empty
// the engine runs without durability — every write lives only in memory.
func WithWAL(walPath string) Option {
	return func(e *Engine) { e.walPath = walPath }
}

// NewEngine constructs an Engine, opens its WAL (if configured), and runs
// recovery once before returning, so the engine is fully caught up before
// it ever sees a caller request.
func NewEngine(log logger.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		id:             uuid.NewString(),
		decisionPolicy: SafeDefault,
		guards:         NewGuardSet(),
		clock:          systemClock,
	}
	e.log = log.WithEngine(e.id)
	for _, opt := range opts {
		opt(e)
	}
	e.store = NewStore(e.clock)

	if e.walPath != "" {
		e.wal = OpenWAL(e.walPath, e.log)
		e.snapshotPath = SnapshotPath(e.walPath)
		if err := Recover(e); err != nil {
			return nil, err
		}
	}

	metrics.GuardsRegistered.Set(0)
	return e, nil
}

// Propose runs guard simulation followed by the policy transform. It never
// mutates the store, WAL, or guard set — two consecutive calls with the
// same arguments yield identical results.
func (e *Engine) Propose(key Key, value Value) WriteEvaluation {
	start := time.Now()
	eval := e.guards.Simulate(key, value)
	applyDecisionPolicy(e.currentPolicy(), &eval)

	metrics.ProposalsTotal.WithLabelValues(verdictLabel(eval.Verdict)).Inc()
	metrics.ProposalEvaluationDuration.WithLabelValues(verdictLabel(eval.Verdict)).Observe(time.Since(start).Seconds())

	return eval
}

func verdictLabel(v Verdict) string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "counter_offer"
	}
}

func (e *Engine) currentPolicy() DecisionPolicy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decisionPolicy
}

// Commit bypasses guards entirely and writes value unconditionally. Used
// for forced writes; it forwards to Set.
func (e *Engine) Commit(key Key, value Value) {
	e.Set(key, value)
}

// Set stamps value with the current time, writes it ahead to the WAL (if
// enabled), then appends it to the store and applies retention. WAL-ahead
// discipline applies uniformly to every mutation this engine makes.
func (e *Engine) Set(key Key, value Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setLocked(key, value, e.clock())
}

func (e *Engine) setLocked(key Key, value Value, timestamp time.Time) {
	if e.wal != nil {
		e.wal.LogSet(key, value, timestamp)
		metrics.WALWritesTotal.WithLabelValues("SET", walStatus(e.wal)).Inc()
	}
	e.store.SetAt(key, value, timestamp)
	metrics.CommitsTotal.WithLabelValues("set").Inc()
	metrics.StoreKeysTotal.Set(float64(e.store.Size()))
	metrics.StoreVersionsTotal.Set(float64(e.store.VersionCount()))
}

func walStatus(w *WAL) string {
	if w.Enabled() {
		return "ok"
	}
	return "disabled"
}

// Del removes every version of key, writing a WAL DEL record ahead of the
// in-memory mutation. Returns NotFoundError if key was absent.
func (e *Engine) Del(key Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.Exists(key) {
		return &NotFoundError{Key: key}
	}

	if e.wal != nil {
		e.wal.LogDel(key)
		metrics.WALWritesTotal.WithLabelValues("DEL", walStatus(e.wal)).Inc()
	}
	err := e.store.Del(key)
	metrics.CommitsTotal.WithLabelValues("delete").Inc()
	metrics.StoreKeysTotal.Set(float64(e.store.Size()))
	return err
}

// Get returns the latest value of key.
func (e *Engine) Get(key Key) (Value, bool) { return e.store.Get(key) }

// GetAt returns the value of the latest version at or before t.
func (e *Engine) GetAt(key Key, t time.Time) (Value, bool) { return e.store.GetAt(key, t) }

// History returns key's full version history, oldest first.
func (e *Engine) History(key Key) []Version { return e.store.History(key) }

// ExplainGetAt reconstructs the reasoning behind a point-in-time lookup.
func (e *Engine) ExplainGetAt(key Key, t time.Time) ExplainResult {
	return e.store.ExplainGetAt(key, t)
}

// AddGuard registers g. Duplicate names are permitted and appended silently;
// both guards remain active.
func (e *Engine) AddGuard(g Guard) {
	e.guards.Add(g)
	metrics.GuardsRegistered.Set(float64(e.guards.Count()))
	e.log.Info("guard added",
		logger.String("name", g.Name),
		logger.String("pattern", g.KeyPattern),
		logger.String("description", g.Describe()))
}

// RemoveGuardByName removes the first guard named name, reporting whether
// one was found.
func (e *Engine) RemoveGuardByName(name string) bool {
	removed := e.guards.RemoveByName(name)
	if removed {
		metrics.GuardsRegistered.Set(float64(e.guards.Count()))
	}
	return removed
}

// ListGuards returns every registered guard, in registration order.
func (e *Engine) ListGuards() []Guard { return e.guards.List() }

// ListGuardsForKey returns the enabled guards matching key.
func (e *Engine) ListGuardsForKey(key Key) []Guard { return e.guards.ForKey(key) }

// SetDecisionPolicy installs a new decision policy and, if the WAL is
// enabled, appends a POLICY SET record. The call is idempotent with respect
// to final state but a record is appended on every call.
func (e *Engine) SetDecisionPolicy(policy DecisionPolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setDecisionPolicyLocked(policy, true)
}

// setDecisionPolicyLocked installs policy. logWAL is false during recovery,
// when WAL logging is suppressed regardless of the WAL's own enabled state.
func (e *Engine) setDecisionPolicyLocked(policy DecisionPolicy, logWAL bool) {
	if logWAL && e.wal != nil {
		e.wal.LogPolicy(policy)
		metrics.WALWritesTotal.WithLabelValues("POLICY", walStatus(e.wal)).Inc()
	}
	e.decisionPolicy = policy
}

// GetDecisionPolicy returns the current decision policy.
func (e *Engine) GetDecisionPolicy() DecisionPolicy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decisionPolicy
}

// SetRetentionPolicy installs a new retention policy and eagerly re-applies
// it to every existing key.
func (e *Engine) SetRetentionPolicy(policy RetentionPolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetRetentionPolicy(policy)
}

// GetRetentionPolicy returns the current retention policy.
func (e *Engine) GetRetentionPolicy() RetentionPolicy {
	return e.store.RetentionPolicy()
}

// Snapshot writes the engine's full current state to disk and truncates the
// WAL. Requires the WAL to be configured; returns an error (and preserves
// the WAL untouched) if the snapshot file cannot be written.
func (e *Engine) Snapshot() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wal == nil {
		return &IOError{Op: "snapshot", Err: errNoWAL}
	}

	start := time.Now()
	data := e.store.AllLatest()
	if err := WriteSnapshot(e.snapshotPath, e.decisionPolicy, data); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := e.wal.Truncate(); err != nil {
		metrics.SnapshotsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
	metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	if info, err := os.Stat(e.snapshotPath); err == nil {
		metrics.SnapshotSizeBytes.Set(float64(info.Size()))
	}
	e.log.Info("snapshot created", logger.Int("keys", len(data)))
	return nil
}

// SetWALEnabled toggles WAL writes without touching the underlying file.
// Callers (recovery, tests) that disable it must restore it afterward.
func (e *Engine) SetWALEnabled(enabled bool) {
	if e.wal != nil {
		e.wal.SetEnabled(enabled)
	}
}

// Close flushes and closes the WAL file handle, if any.
func (e *Engine) Close() error {
	if e.wal != nil {
		return e.wal.Close()
	}
	return nil
}

var errNoWAL = &notConfiguredError{"WAL not configured"}

type notConfiguredError struct{ msg string }

func (e *notConfiguredError) Error() string { return e.msg }
