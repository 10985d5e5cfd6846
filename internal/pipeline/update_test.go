package pipeline

import "testing"

func TestUpdateSetAndKeep(t *testing.T) {
	if got := Keep[string]().Apply("current"); got != "current" {
		t.Fatalf("kept update overwrote value: %q", got)
	}
	if got := Set("").Apply("current"); got != "" {
		t.Fatalf("set empty update must clear, got %q", got)
	}
	if v, ok := Set(0.6).Get(); !ok || v != 0.6 {
		t.Fatalf("unexpected Get result: %v %v", v, ok)
	}
	if _, ok := Keep[float64]().Get(); ok {
		t.Fatalf("kept update reported as set")
	}
}

func TestStageTerminal(t *testing.T) {
	for _, s := range []Stage{StageDone, StageFailed} {
		if !s.Terminal() {
			t.Fatalf("expected %v to be terminal", s)
		}
	}
	if StageSummarizing.Terminal() {
		t.Fatalf("summarizing must not be terminal")
	}
	if StageFetching.String() != "fetching" {
		t.Fatalf("unexpected stage name %q", StageFetching.String())
	}
}
