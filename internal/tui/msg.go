package tui

import (
	"time"

	"github.com/verdant-cli/verdant/internal/ui"
)

// Run lifecycle messages — sent by the Bridge in response to executor
// observer callbacks.

// MsgRunStarted is sent once when execution begins.
type MsgRunStarted struct {
	Total int
}

// MsgDayStarted is sent when the executor moves to a new plan day.
type MsgDayStarted struct {
	Date  time.Time
	Count int
}

// MsgCommit is sent for every commit created.
type MsgCommit struct {
	Date  time.Time
	SHA   string
	Done  int
	Total int
}

// MsgCommitFailed is sent when a single commit fails.
type MsgCommitFailed struct {
	Date time.Time
	Slot int
	Err  error
}

// MsgWarn carries a non-fatal warning line.
type MsgWarn struct {
	Text string
}

// MsgRunDone is sent when the run finishes; the model renders the summary
// and quits.
type MsgRunDone struct {
	Summary ui.RunSummaryData
}
