package sentinel

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sentineldb/sentineldb/internal/logger"
	"github.com/sentineldb/sentineldb/internal/metrics"
)

// walRecordSet, walRecordDel and walRecordPolicy name the three WAL record
// types; writeLine receives one alongside each line but does not use it.
const (
	walRecordSet    = "SET"
	walRecordDel    = "DEL"
	walRecordPolicy = "POLICY"
)

// WAL is an append-only, line-oriented write-ahead log. Every record is
// flushed to disk immediately after being written; on any write or sync
// failure the log disables itself rather than aborting the caller's
// mutation. The WAL toggles between enabled and disabled states on I/O
// error or explicit disable during replay.
type WAL struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	writer  *bufio.Writer
	enabled atomic.Bool
	log     logger.Logger
}

// SnapshotPath returns the sibling snapshot file path for a given WAL path:
// <dir>/snapshot.db.
func SnapshotPath(walPath string) string {
	return filepath.Join(filepath.Dir(walPath), "snapshot.db")
}

// OpenWAL creates the WAL's parent directory if needed and opens the file
// for append. If either step fails, it returns a WAL in the disabled state
// rather than an error — the engine continues in volatile mode.
func OpenWAL(path string, log logger.Logger) *WAL {
	w := &WAL{path: path, log: log}
	w.open()
	return w
}

func (w *WAL) open() {
	dir := filepath.Dir(w.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.log.Warn("failed to create WAL directory", logger.String("dir", dir), logger.Error(err))
			w.enabled.Store(false)
			metrics.WALDisabledTotal.Inc()
			return
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.log.Warn("failed to open WAL file, continuing without durability",
			logger.String("path", w.path), logger.Error(err))
		w.enabled.Store(false)
		metrics.WALDisabledTotal.Inc()
		return
	}

	w.mu.Lock()
	w.file = f
	w.writer = bufio.NewWriter(f)
	w.mu.Unlock()
	w.enabled.Store(true)
	w.log.Info("WAL initialized", logger.String("path", w.path))
}

// Enabled reports whether the WAL currently accepts writes.
func (w *WAL) Enabled() bool { return w.enabled.Load() }

// SetEnabled toggles the WAL without touching the underlying file, the
// replay-time disable/re-enable the recovery coordinator performs.
func (w *WAL) SetEnabled(enabled bool) { w.enabled.Store(enabled) }

// LogSet appends a `SET <key> <value> <epochMillis>` record.
func (w *WAL) LogSet(key Key, value Value, timestamp time.Time) {
	w.writeLine(walRecordSet, fmt.Sprintf("SET %s %s %d\n", key, value, timestamp.UnixMilli()))
}

// LogDel appends a `DEL <key>` record.
func (w *WAL) LogDel(key Key) {
	w.writeLine(walRecordDel, fmt.Sprintf("DEL %s\n", key))
}

// LogPolicy appends a `POLICY SET <name>` record.
func (w *WAL) LogPolicy(policy DecisionPolicy) {
	w.writeLine(walRecordPolicy, fmt.Sprintf("POLICY SET %s\n", policy.String()))
}

func (w *WAL) writeLine(recordType, line string) {
	if !w.enabled.Load() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return
	}

	if _, err := w.writer.WriteString(line); err != nil {
		w.disableLocked("write", err)
		return
	}
	if err := w.writer.Flush(); err != nil {
		w.disableLocked("flush", err)
		return
	}
	if err := w.file.Sync(); err != nil {
		w.disableLocked("sync", err)
		return
	}
}

func (w *WAL) disableLocked(op string, err error) {
	w.enabled.Store(false)
	metrics.WALDisabledTotal.Inc()
	w.log.Warn("WAL write failed, disabling durability",
		logger.String("op", op), logger.String("path", w.path), logger.Error(err))
}

// Truncate empties the WAL file and reopens it for append, the last step of
// taking a snapshot.
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		_ = w.file.Close()
	}

	f, err := os.OpenFile(w.path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.enabled.Store(false)
		return &IOError{Op: "wal truncate", Err: err}
	}
	_ = f.Close()

	f, err = os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.enabled.Store(false)
		return &IOError{Op: "wal reopen", Err: err}
	}

	w.file = f
	w.writer = bufio.NewWriter(f)
	w.enabled.Store(true)
	return nil
}

// Close flushes and closes the WAL file handle. Scoped release: the engine
// must call this on every exit path, normal or not.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	if w.writer != nil {
		_ = w.writer.Flush()
	}
	err := w.file.Close()
	w.file = nil
	w.writer = nil
	return err
}
