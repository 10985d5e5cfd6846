package pipeline

import "github.com/samvad-hq/neura-briefing/internal/domain"

// Stage is the pipeline state a snapshot was emitted from.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageFetching
	StageAggregating
	StageSummarizing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageValidating:
		return "validating"
	case StageFetching:
		return "fetching"
	case StageAggregating:
		return "aggregating"
	case StageSummarizing:
		return "summarizing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no snapshot follows one in this stage.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// View selects which panel a front end should show.
type View int

const (
	ViewConfig View = iota
	ViewResults
)

func (v View) String() string {
	if v == ViewResults {
		return "results"
	}
	return "config"
}

// Snapshot is one progress step of a run. Line is the log line added by this
// step (empty when none was added) and Log the whole log so far.
type Snapshot struct {
	Stage    Stage
	Topic    string
	Progress Update[float64]
	Summary  Update[string]
	Line     string
	Log      string
	Table    Update[[]domain.AggregateRow]
	View     Update[View]
	Err      error
}

// State is the display a consumer builds by applying snapshots in order.
type State struct {
	Stage    Stage
	Progress float64
	Summary  string
	Log      string
	Table    []domain.AggregateRow
	View     View
	Err      error
}

// Apply folds s into the state, honoring kept fields.
func (st *State) Apply(s Snapshot) {
	st.Stage = s.Stage
	st.Progress = s.Progress.Apply(st.Progress)
	st.Summary = s.Summary.Apply(st.Summary)
	st.Log = s.Log
	st.Table = s.Table.Apply(st.Table)
	st.View = s.View.Apply(st.View)
	if s.Err != nil {
		st.Err = s.Err
	}
}
