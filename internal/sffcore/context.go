package sffcore

import (
	"fmt"
	"io"

	"v.io/x/lib/vlog"
)

// RunContext carries everything a pass needs explicitly: the log-file
// sink, the single library's parameters, and the linker probe (if any).
// The reference implementation threads a single store handle and log file
// through every pass as ambient globals (gkpStore, logFile); this is the
// explicit replacement spec.md §9 calls for — every operation takes a
// *RunContext (or the narrower pieces of it) instead of reaching for
// package-level state.
type RunContext struct {
	// LogWriter receives one line per recoverable event (§7). Nil disables
	// event logging. cmd/sff2frg sets it to the -log file when one is given
	// and to standard error otherwise.
	LogWriter io.Writer

	// Library is the run's single LibraryRecord (§3).
	Library LibraryParams

	// Linker is the probe sequence for LinkerSplitter, or "" if -linker was
	// not given.
	Linker string
}

// LibraryParams is the subset of LibraryRecord a RunContext needs to hand
// to every pass; the full LibraryRecord type lives in the library package,
// which imports sffcore, so it cannot be referenced here without a cycle.
type LibraryParams struct {
	UID         UID
	Mean        int
	StdDev      int
	Orientation Orientation
}

// Logf appends one line to LogWriter. It is a no-op if LogWriter is nil.
func (c *RunContext) Logf(format string, args ...interface{}) {
	if c == nil || c.LogWriter == nil {
		return
	}
	fmt.Fprintf(c.LogWriter, format+"\n", args...)
}

// Progressf reports a pass-boundary or per-file progress line the way the
// original sffToCA reports to stderr at the start of each stage (§C.3).
// Unlike Logf, this always emits: it is diagnostic noise, not the §7
// recoverable-event log.
func (c *RunContext) Progressf(format string, args ...interface{}) {
	vlog.Infof(format, args...)
}
