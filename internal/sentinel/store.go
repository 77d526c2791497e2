package sentinel

import (
	"fmt"
	"sync"
	"time"

	"github.com/sentineldb/sentineldb/internal/metrics"
)

// Store holds the in-memory, multi-version state of every key. It knows
// nothing about guards, policies, or durability — those are the Engine's
// concern. A single RWMutex covers the map and every key's version slice:
// readers take RLock, writers take Lock.
type Store struct {
	mu       sync.RWMutex
	data     map[Key][]Version
	clock    Clock
	policy   RetentionPolicy
}

// NewStore creates an empty store with the Full retention policy and the
// given clock, falling back to the system wall clock when clock is nil.
func NewStore(clock Clock) *Store {
	if clock == nil {
		clock = systemClock
	}
	return &Store{
		data:  make(map[Key][]Version),
		clock: clock,
	}
}

// Set stamps value with the current time, appends it to key's history, and
// applies the active retention policy to that key.
func (s *Store) Set(key Key, value Value) {
	s.SetAt(key, value, s.clock())
}

// SetAt appends value to key's history at an explicit timestamp. This is the
// replay entry point: WAL recovery calls it with each record's own timestamp
// so that original timestamps survive a restart; snapshot loading calls it
// with the current time, since snapshots carry no timestamps.
func (s *Store) SetAt(key Key, value Value, timestamp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append(s.data[key], Version{Timestamp: timestamp, Value: value})
	s.pruneLocked(key)
}

// Get returns the latest value of key, if any.
func (s *Store) Get(key Key) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.data[key]
	if len(versions) == 0 {
		return "", false
	}
	return versions[len(versions)-1].Value, true
}

// Del removes every version of key. Returns a NotFoundError if key had no
// versions.
func (s *Store) Del(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return &NotFoundError{Key: key}
	}
	delete(s.data, key)
	return nil
}

// GetAt returns the value of the latest version with timestamp <= t.
func (s *Store) GetAt(key Key, t time.Time) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.data[key]
	var result Value
	found := false
	for _, v := range versions {
		if !v.Timestamp.After(t) {
			result, found = v.Value, true
		} else {
			break
		}
	}
	return result, found
}

// History returns a defensive copy of key's version list, oldest first. The
// caller must not assume the backing array is shared with the store.
func (s *Store) History(key Key) []Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.data[key]
	out := make([]Version, len(versions))
	copy(out, versions)
	return out
}

// Exists reports whether key currently has any versions.
func (s *Store) Exists(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Size returns the number of distinct keys currently held.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// VersionCount returns the total number of versions retained across every
// key, used for metrics.
func (s *Store) VersionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, versions := range s.data {
		total += len(versions)
	}
	return total
}

// AllLatest returns the latest value of every live key, the shape a
// snapshot needs.
func (s *Store) AllLatest() map[Key]Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Key]Value, len(s.data))
	for key, versions := range s.data {
		if len(versions) > 0 {
			out[key] = versions[len(versions)-1].Value
		}
	}
	return out
}

// SetRetentionPolicy installs a new retention policy and immediately
// re-applies it to every existing key: a policy change is not just
// forward-looking.
func (s *Store) SetRetentionPolicy(policy RetentionPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
	for key := range s.data {
		s.pruneLocked(key)
	}
}

// RetentionPolicy returns the currently active retention policy.
func (s *Store) RetentionPolicy() RetentionPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// pruneLocked applies the active retention policy to a single key. Caller
// must hold s.mu for writing.
func (s *Store) pruneLocked(key Key) {
	versions := s.data[key]
	if len(versions) == 0 {
		return
	}
	pruned := applyRetention(s.policy, versions, s.clock())
	if dropped := len(versions) - len(pruned); dropped > 0 {
		metrics.RetentionPrunedTotal.WithLabelValues(key).Add(float64(dropped))
	}
	s.data[key] = pruned
}

// ExplainGetAt reconstructs the reasoning behind a point-in-time lookup.
func (s *Store) ExplainGetAt(key Key, t time.Time) ExplainResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := ExplainResult{
		Key:            key,
		QueryTimestamp: t,
	}

	versions := s.data[key]
	result.TotalVersions = len(versions)
	if len(versions) == 0 {
		result.Reasoning = "Key not found in database"
		return result
	}

	selected := -1
	for i, v := range versions {
		if !v.Timestamp.After(t) {
			if selected >= 0 {
				result.SkippedVersions = append(result.SkippedVersions, versions[selected])
			}
			selected = i
		} else {
			break
		}
	}

	if selected >= 0 {
		result.Found = true
		sv := versions[selected]
		result.SelectedVersion = &sv

		reasoning := fmt.Sprintf(
			"Selected version at index %d (0-based) out of %d total versions. "+
				"This is the most recent version at or before the query timestamp.",
			selected, result.TotalVersions)
		if len(result.SkippedVersions) > 0 {
			reasoning += fmt.Sprintf(" Skipped %d older version(s) that were also valid but superseded.",
				len(result.SkippedVersions))
		}
		versionsAfter := result.TotalVersions - selected - 1
		if versionsAfter > 0 {
			reasoning += fmt.Sprintf(" Excluded %d version(s) that occurred after the query timestamp.",
				versionsAfter)
		}
		result.Reasoning = reasoning
	} else {
		result.Reasoning = fmt.Sprintf(
			"No version found at or before the query timestamp. All %d version(s) occurred after the query time.",
			result.TotalVersions)
	}

	return result
}
