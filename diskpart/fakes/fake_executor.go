package fakes

import (
	"time"

	"github.com/cloudfoundry/disk-provisioner/diskpart"
)

type RunCall struct {
	Script  diskpart.Script
	Timeout time.Duration
}

type RunOutcome struct {
	Result diskpart.Result
	Err    error
}

type FakeExecutor struct {
	RunCalls []RunCall

	// RunOutcomes are consumed in invocation order; once drained, every
	// further call returns DefaultResult.
	RunOutcomes   []RunOutcome
	DefaultResult diskpart.Result
}

func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		DefaultResult: diskpart.Result{ExitStatus: 0},
	}
}

func (e *FakeExecutor) Run(script diskpart.Script, timeout time.Duration) (diskpart.Result, error) {
	e.RunCalls = append(e.RunCalls, RunCall{Script: script, Timeout: timeout})

	if len(e.RunOutcomes) > 0 {
		outcome := e.RunOutcomes[0]
		e.RunOutcomes = e.RunOutcomes[1:]
		return outcome.Result, outcome.Err
	}

	return e.DefaultResult, nil
}

func (e *FakeExecutor) AddOutcome(result diskpart.Result, err error) {
	e.RunOutcomes = append(e.RunOutcomes, RunOutcome{Result: result, Err: err})
}

func (e *FakeExecutor) ScriptLines() [][]string {
	var lines [][]string
	for _, call := range e.RunCalls {
		lines = append(lines, call.Script.Lines())
	}
	return lines
}
