package sentinel

import "testing"

func TestGuard_AppliesTo(t *testing.T) {
	cases := []struct {
		pattern, key string
		want         bool
	}{
		{"*", "anything", true},
		{"price", "price", true},
		{"price", "prices", false},
		{"price*", "price", true},
		{"price*", "price_usd", true},
		{"price*", "cost", false},
	}
	for _, c := range cases {
		g := NewRangeIntGuard("g", c.pattern, 0, 100)
		if got := g.AppliesTo(c.key); got != c.want {
			t.Errorf("pattern %q applies to %q: got %v, want %v", c.pattern, c.key, got, c.want)
		}
	}
}

func TestRangeIntGuard_Evaluate(t *testing.T) {
	g := NewRangeIntGuard("range", "score*", 0, 100)

	if v, _ := g.Evaluate("notanumber"); v != Reject {
		t.Fatalf("expected Reject for non-integer, got %v", v)
	}
	if v, _ := g.Evaluate("50"); v != Accept {
		t.Fatalf("expected Accept for in-range value, got %v", v)
	}
	if v, _ := g.Evaluate("150"); v != CounterOffer {
		t.Fatalf("expected CounterOffer for out-of-range value, got %v", v)
	}
}

func TestRangeIntGuard_Alternatives_BelowMin(t *testing.T) {
	g := NewRangeIntGuard("range", "score*", 0, 100)
	alts := g.GenerateAlternatives("-10")

	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives, got %d: %+v", len(alts), alts)
	}
	if alts[0].Value != "0" || alts[0].Explanation != "Minimum allowed value (proposed -10 is too low)" {
		t.Errorf("unexpected first alternative: %+v", alts[0])
	}
	if alts[1].Value != "25" || alts[1].Explanation != "Conservative value within range" {
		t.Errorf("unexpected second alternative: %+v", alts[1])
	}
}

func TestRangeIntGuard_Alternatives_AboveMax(t *testing.T) {
	g := NewRangeIntGuard("range", "score*", 0, 100)
	alts := g.GenerateAlternatives("150")

	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives, got %d: %+v", len(alts), alts)
	}
	if alts[0].Value != "100" {
		t.Errorf("expected max as first alternative, got %q", alts[0].Value)
	}
	if alts[1].Value != "75" {
		t.Errorf("expected conservative midpoint 75, got %q", alts[1].Value)
	}
}

func TestRangeIntGuard_NoMidpointWhenDegenerate(t *testing.T) {
	g := NewRangeIntGuard("range", "flag*", 1, 1)
	alts := g.GenerateAlternatives("0")
	if len(alts) != 1 {
		t.Fatalf("expected no conservative alternative for a degenerate range, got %+v", alts)
	}
}

func TestEnumGuard_Evaluate(t *testing.T) {
	g := NewEnumGuard("status", "status*", []string{"active", "inactive", "pending"})

	if v, _ := g.Evaluate("active"); v != Accept {
		t.Fatalf("expected Accept for allowed value, got %v", v)
	}
	if v, _ := g.Evaluate("invalid"); v != CounterOffer {
		t.Fatalf("expected CounterOffer for disallowed value, got %v", v)
	}
}

func TestEnumGuard_Alternatives_CaseCorrection(t *testing.T) {
	g := NewEnumGuard("status", "status*", []string{"active", "inactive", "pending"})
	alts := g.GenerateAlternatives("ACTIVE")

	if len(alts) != 1 || alts[0].Value != "active" {
		t.Fatalf("expected single case-corrected alternative 'active', got %+v", alts)
	}
}

func TestEnumGuard_Alternatives_Substring(t *testing.T) {
	g := NewEnumGuard("status", "status*", []string{"active", "inactive", "pending"})
	alts := g.GenerateAlternatives("activ")

	found := false
	for _, a := range alts {
		if a.Value == "active" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'active' among substring-matched alternatives, got %+v", alts)
	}
}

func TestEnumGuard_Alternatives_NoMatchFallsBackToFirstThree(t *testing.T) {
	g := NewEnumGuard("status", "status*", []string{"active", "inactive", "pending", "archived"})
	alts := g.GenerateAlternatives("zzz")

	if len(alts) != 3 {
		t.Fatalf("expected 3 fallback alternatives, got %d: %+v", len(alts), alts)
	}
	want := []string{"active", "inactive", "pending"}
	for i, w := range want {
		if alts[i].Value != w {
			t.Errorf("alternative %d = %q, want %q", i, alts[i].Value, w)
		}
	}
}

func TestLengthGuard_Evaluate(t *testing.T) {
	g := NewLengthGuard("len", "name*", 3, 10)

	if v, _ := g.Evaluate("bob"); v != Accept {
		t.Fatalf("expected Accept for in-range length, got %v", v)
	}
	if v, _ := g.Evaluate("ab"); v != CounterOffer {
		t.Fatalf("expected CounterOffer for too-short value, got %v", v)
	}
	if v, _ := g.Evaluate("waytoolongname"); v != CounterOffer {
		t.Fatalf("expected CounterOffer for too-long value, got %v", v)
	}
}

func TestLengthGuard_Alternatives_Padded(t *testing.T) {
	g := NewLengthGuard("len", "name*", 5, 10)
	alts := g.GenerateAlternatives("ab")

	if len(alts) != 1 || alts[0].Value != "ab***" {
		t.Fatalf("expected padded alternative 'ab***', got %+v", alts)
	}
}

func TestLengthGuard_Alternatives_TruncatedWithSaferMargin(t *testing.T) {
	g := NewLengthGuard("len", "name*", 1, 10)
	alts := g.GenerateAlternatives("this is way too long")

	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives (truncated + safer margin), got %+v", alts)
	}
	if alts[0].Value != "this is wa" {
		t.Errorf("expected truncated to 10 chars, got %q", alts[0].Value)
	}
	if alts[1].Value != "this is " {
		t.Errorf("expected safer-margin truncation to 8 chars, got %q", alts[1].Value)
	}
}

func TestLengthGuard_NoSaferMarginWhenMaxLenTooSmall(t *testing.T) {
	g := NewLengthGuard("len", "name*", 1, 5)
	alts := g.GenerateAlternatives("toolongvalue")

	if len(alts) != 1 {
		t.Fatalf("expected only the truncated alternative when maxLen<=5, got %+v", alts)
	}
}

func TestGuardSet_Simulate_NoGuards(t *testing.T) {
	gs := NewGuardSet()
	eval := gs.Simulate("anything", "value")

	if eval.Verdict != Accept || eval.Reason != "no guards defined" {
		t.Fatalf("expected Accept/'no guards defined', got %+v", eval)
	}
}

func TestGuardSet_Simulate_RejectShortCircuits(t *testing.T) {
	gs := NewGuardSet()
	gs.Add(NewRangeIntGuard("scoreG", "score*", 0, 100))
	gs.Add(NewEnumGuard("neverSeen", "score*", []string{"x"}))

	eval := gs.Simulate("score", "notanumber")
	if eval.Verdict != Reject {
		t.Fatalf("expected Reject, got %v", eval.Verdict)
	}
	if len(eval.TriggeredGuards) != 1 || eval.TriggeredGuards[0] != "scoreG" {
		t.Fatalf("expected only scoreG to trigger, got %+v", eval.TriggeredGuards)
	}
	if len(eval.Alternatives) != 0 {
		t.Fatalf("expected no alternatives on reject, got %+v", eval.Alternatives)
	}
}

func TestGuardSet_Simulate_CombinesCounterOffers(t *testing.T) {
	gs := NewGuardSet()
	gs.Add(NewRangeIntGuard("rangeG", "code*", 0, 10))
	gs.Add(NewLengthGuard("lenG", "code*", 5, 10))

	eval := gs.Simulate("code", "999")
	if eval.Verdict != CounterOffer {
		t.Fatalf("expected CounterOffer, got %v", eval.Verdict)
	}
	if len(eval.TriggeredGuards) != 2 {
		t.Fatalf("expected both guards to trigger, got %+v", eval.TriggeredGuards)
	}
}

func TestGuardSet_DuplicateNamesAppendSilently(t *testing.T) {
	gs := NewGuardSet()
	gs.Add(NewRangeIntGuard("dup", "k", 0, 10))
	gs.Add(NewRangeIntGuard("dup", "k", 0, 10))

	if gs.Count() != 2 {
		t.Fatalf("expected both guards with duplicate name to remain registered, got %d", gs.Count())
	}

	if !gs.RemoveByName("dup") {
		t.Fatal("expected RemoveByName to find the first match")
	}
	if gs.Count() != 1 {
		t.Fatalf("expected exactly one guard removed, got %d remaining", gs.Count())
	}
}
