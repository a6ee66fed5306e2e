package domain

import "time"

// Level is the severity of a journal entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one line of the run journal.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  map[string]any
}

// UnitResult records the outcome of one unit.
type UnitResult struct {
	Unit  Unit
	OK    bool
	Err   error
	Files []string

	// Media is the paper applied on a physical device, if any.
	Media string
}

// Report is the outcome of one batch.
type Report struct {
	RunID    string
	Job      Job
	State    string
	Started  time.Time
	Finished time.Time
	Results  []UnitResult
	Entries  []Entry
}

// Attempted returns the number of units the batch started.
func (r *Report) Attempted() int {
	return len(r.Results)
}

// Succeeded returns the number of units that were dispatched.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK {
			n++
		}
	}
	return n
}

// Failed returns the results of units that were skipped.
func (r *Report) Failed() []UnitResult {
	var out []UnitResult
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Serials returns the serials of every attempted unit in order.
func (r *Report) Serials() []int {
	out := make([]int, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Unit.Serial)
	}
	return out
}
