package sentinel

// applyDecisionPolicy refines a simulation's verdict into the final one,
// per the active decision policy. It mutates eval directly — eval is always
// a fresh value built by Simulate, never simulation's internals, so
// simulation itself stays read-only.
func applyDecisionPolicy(policy DecisionPolicy, eval *WriteEvaluation) {
	eval.AppliedPolicy = policy

	if eval.Verdict == Accept {
		eval.PolicyReasoning = "no policy applied"
		return
	}

	switch policy {
	case Strict:
		if eval.Verdict == CounterOffer {
			eval.Verdict = Reject
			eval.Alternatives = nil
		}
		eval.PolicyReasoning = "Rejected under STRICT policy due to guard violation"

	case DevFriendly:
		if eval.Verdict == Reject {
			eval.PolicyReasoning = "Rejected under DEV_FRIENDLY policy - value cannot be salvaged"
		} else {
			eval.PolicyReasoning = "Counter-offer under DEV_FRIENDLY policy - showing alternatives"
		}

	default: // SafeDefault
		if eval.Verdict == CounterOffer {
			if len(eval.Alternatives) == 0 {
				eval.Verdict = Reject
				eval.PolicyReasoning = "Rejected under SAFE_DEFAULT policy - no safe alternatives available"
			} else {
				eval.PolicyReasoning = "Counter-offer under SAFE_DEFAULT policy - safe alternatives available"
			}
		} else {
			eval.PolicyReasoning = "Rejected under SAFE_DEFAULT policy - critical violation"
		}
	}
}
