package sentinel

import (
	"strconv"
	"strings"
	"time"

	"github.com/sentineldb/sentineldb/internal/logger"
	"github.com/sentineldb/sentineldb/internal/metrics"
)

// Recover replays an engine's snapshot and WAL into its store and decision
// policy, in two phases: snapshot (policy pass, then data pass) first, then
// WAL phase A (every POLICY SET, last wins) and WAL phase B (every SET/DEL,
// in order). WAL logging is suppressed throughout so replay never
// re-writes what it is reading, and afterwards the WAL is re-enabled only if
// it was enabled (successfully opened) beforehand.
func Recover(e *Engine) error {
	start := time.Now()
	walWasEnabled := e.wal != nil && e.wal.Enabled()
	e.SetWALEnabled(false)
	defer e.SetWALEnabled(walWasEnabled)

	// hclog gives replay a named, leveled trace sink distinct from the
	// engine's own info-level lifecycle logging, without requiring a second
	// logging library — it speaks through the same logger.Logger underneath.
	trace := logger.NewHCLogAdapter("recovery", e.log)
	trace.Trace("recovery starting", "snapshot_path", e.snapshotPath, "wal_path", e.walPath)

	now := e.clock()

	snapshotLines := ReadLines(e.snapshotPath, e.log)
	if len(snapshotLines) > 0 {
		e.log.Info("loading snapshot", logger.String("path", e.snapshotPath))
		for _, line := range snapshotLines {
			if policy, ok := parsePolicyLine(line); ok {
				e.setDecisionPolicyLocked(policy, false)
			}
		}
		for _, line := range snapshotLines {
			if key, value, ok := parseSnapshotSetLine(line); ok {
				e.store.SetAt(key, value, now)
			}
		}
		e.log.Info("snapshot loaded", logger.Int("keys", e.store.Size()))
	}

	walLines := ReadLines(e.walPath, e.log)
	if len(walLines) > 0 {
		e.log.Info("replaying WAL", logger.Int("lines", len(walLines)))

		// Phase A: policy records, last one wins.
		for _, line := range walLines {
			if policy, ok := parsePolicyLine(line); ok {
				e.setDecisionPolicyLocked(policy, false)
				metrics.RecoveryRecordsReplayedTotal.WithLabelValues("POLICY").Inc()
			}
		}

		// Phase B: data records, in order.
		for _, line := range walLines {
			switch {
			case strings.HasPrefix(line, "SET "):
				key, value, timestamp, ok := parseWALSetLine(line, now)
				if !ok {
					e.log.Warn("skipping malformed WAL line", logger.String("line", line))
					trace.Warn("malformed WAL line skipped", "line", line)
					metrics.RecoveryMalformedLinesTotal.Inc()
					continue
				}
				e.store.SetAt(key, value, timestamp)
				metrics.RecoveryRecordsReplayedTotal.WithLabelValues("SET").Inc()
			case strings.HasPrefix(line, "DEL "):
				key, ok := parseDelLine(line)
				if !ok {
					e.log.Warn("skipping malformed WAL line", logger.String("line", line))
					metrics.RecoveryMalformedLinesTotal.Inc()
					continue
				}
				_ = e.store.Del(key)
				metrics.RecoveryRecordsReplayedTotal.WithLabelValues("DEL").Inc()
			case strings.HasPrefix(line, "POLICY "):
				// already applied in phase A
			default:
				e.log.Warn("skipping unrecognized WAL line", logger.String("line", line))
				metrics.RecoveryMalformedLinesTotal.Inc()
			}
		}

		e.log.Info("WAL replay complete", logger.Int("keys", e.store.Size()))
	}

	metrics.RecoveryDuration.Observe(time.Since(start).Seconds())
	trace.Trace("recovery complete", "keys", e.store.Size(), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// parsePolicyLine parses a `POLICY SET <name>` line. An unrecognized policy
// name causes ok to be false, so the record is silently skipped.
func parsePolicyLine(line string) (DecisionPolicy, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "POLICY" || fields[1] != "SET" {
		return SafeDefault, false
	}
	return ParseDecisionPolicy(fields[2])
}

// parseSnapshotSetLine parses a `SET <key> <value>` line (no timestamp —
// snapshots discard history by design).
func parseSnapshotSetLine(line string) (key, value string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "SET" {
		return "", "", false
	}
	return fields[1], fields[2], true
}

// parseWALSetLine parses a `SET <key> <value> <epochMillis>` line. If the
// timestamp field is missing (an old-format file), now is used instead, for
// backward compatibility with files written before timestamps were added.
func parseWALSetLine(line string, now time.Time) (key, value string, timestamp time.Time, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 3 && fields[0] == "SET" {
		return fields[1], fields[2], now, true
	}
	if len(fields) != 4 || fields[0] != "SET" {
		return "", "", time.Time{}, false
	}
	ms, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return "", "", time.Time{}, false
	}
	return fields[1], fields[2], time.UnixMilli(ms), true
}

func parseDelLine(line string) (key string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != "DEL" {
		return "", false
	}
	return fields[1], true
}
