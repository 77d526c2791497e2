// Package sentinel implements the temporal key-value store at the heart of
// SentinelDB: multi-version state, the guard/policy write-negotiation
// pipeline, and the WAL/snapshot durability layer.
package sentinel

import "time"

// Key is an opaque byte string identifying a value's history. Keys must be
// non-empty and whitespace-free, since the WAL's wire format splits records
// on whitespace.
type Key = string

// Value is an opaque byte string. Like Key, it must be whitespace-free.
type Value = string

// Version is one timestamped value in a key's history.
type Version struct {
	Timestamp time.Time
	Value     Value
}

// RetentionMode selects how a key's history is pruned after every append.
type RetentionMode int

const (
	// RetentionFull keeps every version forever.
	RetentionFull RetentionMode = iota
	// RetentionLastN keeps only the N most recent versions.
	RetentionLastN
	// RetentionLastT keeps only versions timestamped at or after now-T seconds.
	RetentionLastT
)

// RetentionPolicy is the process-wide rule applied to every key's history
// after a successful append, and eagerly to every existing key when the
// policy itself changes.
type RetentionPolicy struct {
	Mode    RetentionMode
	Count   int // for RetentionLastN
	Seconds int // for RetentionLastT
}

// Full returns the retention policy that keeps every version.
func Full() RetentionPolicy { return RetentionPolicy{Mode: RetentionFull} }

// LastN returns the retention policy that keeps only the n most recent
// versions of each key. n must be >= 1.
func LastN(n int) RetentionPolicy { return RetentionPolicy{Mode: RetentionLastN, Count: n} }

// LastT returns the retention policy that keeps only versions timestamped
// within the last seconds. seconds must be >= 1.
func LastT(seconds int) RetentionPolicy {
	return RetentionPolicy{Mode: RetentionLastT, Seconds: seconds}
}

// DecisionPolicy is the process-wide singleton governing how guard
// counter-offers and rejections are refined into a final verdict.
type DecisionPolicy int

const (
	// SafeDefault keeps a counter-offer that carries alternatives and
	// rejects one that carries none.
	SafeDefault DecisionPolicy = iota
	// DevFriendly keeps every counter-offer, with or without alternatives.
	DevFriendly
	// Strict rejects every guard violation without negotiation.
	Strict
)

// String renders the policy the way it appears in WAL records and log
// fields: DEV_FRIENDLY, SAFE_DEFAULT, STRICT.
func (p DecisionPolicy) String() string {
	switch p {
	case DevFriendly:
		return "DEV_FRIENDLY"
	case Strict:
		return "STRICT"
	default:
		return "SAFE_DEFAULT"
	}
}

// ParseDecisionPolicy parses the WAL/config spelling of a decision policy.
// ok is false for any unrecognized name.
func ParseDecisionPolicy(name string) (p DecisionPolicy, ok bool) {
	switch name {
	case "DEV_FRIENDLY":
		return DevFriendly, true
	case "SAFE_DEFAULT":
		return SafeDefault, true
	case "STRICT":
		return Strict, true
	default:
		return SafeDefault, false
	}
}

// Verdict is the outcome of evaluating a proposed write, either against a
// single guard or as the combined result of simulation and policy.
type Verdict int

const (
	Accept Verdict = iota
	Reject
	CounterOffer
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "ACCEPT"
	case Reject:
		return "REJECT"
	case CounterOffer:
		return "COUNTER_OFFER"
	default:
		return "UNKNOWN"
	}
}

// Alternative is a safe replacement value offered in place of a rejected or
// negotiated proposal, paired with a human-readable explanation.
type Alternative struct {
	Value       string
	Explanation string
}

// WriteEvaluation is the immutable record produced by proposing a write. It
// is never partially applied: Propose either returns one of these or the
// store is left untouched.
type WriteEvaluation struct {
	Key             Key
	ProposedValue   Value
	Verdict         Verdict
	Reason          string
	TriggeredGuards []string
	Alternatives    []Alternative
	AppliedPolicy   DecisionPolicy
	PolicyReasoning string
}

// ExplainResult is the deterministic reconstruction of a point-in-time
// lookup's reasoning, produced by ExplainGetAt.
type ExplainResult struct {
	Found            bool
	Key              Key
	QueryTimestamp   time.Time
	SelectedVersion  *Version
	Reasoning        string
	SkippedVersions  []Version
	TotalVersions    int
}
