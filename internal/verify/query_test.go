package verify

import "testing"

func TestDefaultQueryStrategyRoundOne(t *testing.T) {
	claim := "Batch correction improves downstream prediction accuracy"
	if got := DefaultQueryStrategy(1, claim, 0); got != claim {
		t.Errorf("round 1 query = %q, want the raw claim text", got)
	}
}

func TestDefaultQueryStrategyNeverRepeatsRoundOne(t *testing.T) {
	claims := []string{
		"Batch correction improves downstream prediction accuracy",
		"batch correction improves prediction",
		"batch",
		"the of and", // Nothing but stopwords
	}
	for _, claim := range claims {
		first := DefaultQueryStrategy(1, claim, 0)
		for round := 2; round <= 5; round++ {
			if got := DefaultQueryStrategy(round, claim, 0); got == first {
				t.Errorf("round %d for %q re-issued round 1's query %q", round, claim, got)
			}
		}
	}
}

func TestDefaultQueryStrategyBroadensPerRound(t *testing.T) {
	claim := "batch correction improves downstream prediction accuracy substantially overall"

	r2 := DefaultQueryStrategy(2, claim, 0)
	r3 := DefaultQueryStrategy(3, claim, 0)
	r4 := DefaultQueryStrategy(4, claim, 0)

	if !(len(r2) >= len(r3) && len(r3) >= len(r4)) {
		t.Errorf("queries should shorten per round: %q %q %q", r2, r3, r4)
	}
}

func TestDefaultQueryStrategyKeepsTermFloor(t *testing.T) {
	claim := "batch correction improves prediction accuracy"
	// Even at an absurd round number the query keeps at least three terms
	got := DefaultQueryStrategy(50, claim, 0)
	if got != "batch correction improves" {
		t.Errorf("floored query = %q", got)
	}
}

func TestSignificantTerms(t *testing.T) {
	got := significantTerms("The batch, and the correction!")
	want := []string{"batch", "correction"}
	if len(got) != len(want) {
		t.Fatalf("significantTerms = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term %d = %q, want %q", i, got[i], want[i])
		}
	}
}
