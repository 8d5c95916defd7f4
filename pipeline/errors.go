// Copyright 2026, the snptree contributors.

package pipeline

import (
	"fmt"
	"strings"
)

// ExternalToolError reports an invoked tool that exited with a non-zero
// status or could not be located or started. Output carries the captured
// standard error of the tool, trimmed to a tail, for diagnosis.
type ExternalToolError struct {
	Tool     string
	ExitCode int // -1 when the tool never started
	Output   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	var b strings.Builder
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, "%s exited with status %d", e.Tool, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "%s could not be run", e.Tool)
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, "\n%s", out)
	}
	return b.String()
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// MissingInputError reports a required input file or file set that is
// absent or empty when a stage begins. The run aborts; nothing is retried.
type MissingInputError struct {
	What string
	Path string
}

func (e *MissingInputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing input: %s", e.What)
	}
	return fmt.Sprintf("missing input: %s: %s", e.What, e.Path)
}
