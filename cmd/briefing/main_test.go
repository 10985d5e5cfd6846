package main

import (
	"bytes"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/samvad-hq/neura-briefing/internal/domain"
	"github.com/samvad-hq/neura-briefing/internal/pipeline"
)

func seq(snaps ...pipeline.Snapshot) iter.Seq[pipeline.Snapshot] {
	return func(yield func(pipeline.Snapshot) bool) {
		for _, s := range snaps {
			if !yield(s) {
				return
			}
		}
	}
}

func TestRenderSuccess(t *testing.T) {
	rows := []domain.AggregateRow{
		{Topic: "AI", Source: "Wire", Title: "Chip news"},
		{Topic: "AI", Source: "Daily", Title: "Model launch"},
	}
	var buf bytes.Buffer
	st := render(&buf, seq(
		pipeline.Snapshot{Stage: pipeline.StageValidating, Line: "[10:00:00] Starting analysis for 1 topics..."},
		pipeline.Snapshot{Stage: pipeline.StageAggregating, Table: pipeline.Set(rows)},
		pipeline.Snapshot{Stage: pipeline.StageSummarizing, Summary: pipeline.Set("partial")},
		pipeline.Snapshot{Stage: pipeline.StageSummarizing, Summary: pipeline.Set("full brief")},
		pipeline.Snapshot{Stage: pipeline.StageDone, Line: "[10:00:09] ✅ Success. Intelligence briefing ready."},
	))

	if st.Stage != pipeline.StageDone || st.Err != nil {
		t.Fatalf("unexpected state: %+v", st)
	}
	out := buf.String()
	for _, want := range []string{"Starting analysis", "TOPIC", "Chip news", "Model launch", "full brief"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "partial") {
		t.Fatalf("intermediate summary should not be printed:\n%s", out)
	}
}

func TestRenderFailure(t *testing.T) {
	var buf bytes.Buffer
	st := render(&buf, seq(pipeline.Snapshot{
		Stage:   pipeline.StageFailed,
		Summary: pipeline.Set("⚠️ Please enter at least one topic."),
		Line:    "[10:00:00] Aborted: No topics entered.",
		Table:   pipeline.Set([]domain.AggregateRow{}),
		Err:     &domain.ValidationError{Reason: "no topics entered"},
	}))

	var vErr *domain.ValidationError
	if !errors.As(st.Err, &vErr) {
		t.Fatalf("expected validation error, got %v", st.Err)
	}
	if strings.Contains(buf.String(), "TOPIC") {
		t.Fatalf("empty table should not be rendered")
	}
}
