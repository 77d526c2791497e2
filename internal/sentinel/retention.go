package sentinel

import "time"

// applyRetention returns the subset of versions that survive policy, given
// the current time. It never reorders versions; it only drops a leading
// prefix, since retention always removes the oldest entries first.
func applyRetention(policy RetentionPolicy, versions []Version, now time.Time) []Version {
	switch policy.Mode {
	case RetentionLastN:
		if policy.Count > 0 && len(versions) > policy.Count {
			return versions[len(versions)-policy.Count:]
		}
		return versions
	case RetentionLastT:
		if policy.Seconds <= 0 {
			return versions
		}
		cutoff := now.Add(-time.Duration(policy.Seconds) * time.Second)
		firstToKeep := 0
		for firstToKeep < len(versions) && versions[firstToKeep].Timestamp.Before(cutoff) {
			firstToKeep++
		}
		return versions[firstToKeep:]
	default: // RetentionFull
		return versions
	}
}
