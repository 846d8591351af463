// Package diskpart drives the privileged diskpart.exe tool. Scripts go in,
// raw output and an exit status come out; callers must re-verify disk state
// through the inventory instead of parsing this output for correctness.
package diskpart

import (
	"fmt"
	"strings"
	"time"
)

const (
	Executable = "diskpart.exe"

	// DefaultTimeout bounds one diskpart invocation. A command that blows
	// through it has unknown side effects on the disk, so the run is
	// reported failed rather than assumed either way.
	DefaultTimeout = 2 * time.Minute
)

// Script is an ordered list of diskpart directives for one invocation.
type Script struct {
	lines []string
}

func NewScript(lines ...string) Script {
	return Script{lines: lines}
}

func (s Script) Lines() []string {
	return s.lines
}

// Contents renders the script the way diskpart /s consumes it, with the
// trailing exit directive.
func (s Script) Contents() string {
	return strings.Join(append(append([]string{}, s.lines...), "exit"), "\n") + "\n"
}

type Result struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

func (r Result) Succeeded() bool {
	return r.ExitStatus == 0
}

// Output is the combined tool output kept for diagnostics on failed steps.
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout + r.Stderr)
}

type Executor interface {
	Run(script Script, timeout time.Duration) (Result, error)
}

type TimeoutError struct {
	Timeout time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("diskpart did not finish within %s", e.Timeout)
}
