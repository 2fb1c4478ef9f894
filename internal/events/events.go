// Package events defines the events published while a projection run
// progresses.
package events

import "time"

// RunStart is emitted once the schema graph is built, before any document
// is projected.
type RunStart struct {
	RunID     string
	Types     int
	Documents int
	Fragments int
}

// RunFinish is emitted when a run completes or aborts.
type RunFinish struct {
	RunID       string
	Diagnostics int
	Err         error
	Duration    time.Duration
}

// DocumentStart is emitted before a fragment or operation is projected.
type DocumentStart struct {
	Name string
	Kind string
}

// DocumentFinish is emitted after a fragment or operation is projected.
type DocumentFinish struct {
	Name     string
	Kind     string
	Err      error
	Duration time.Duration
}
