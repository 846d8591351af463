// Package imaging holds the optional post-partition stages: restoring an OS
// image onto the first primary partition and repairing the UEFI boot loader
// on the EFI partition. Both run external tools through the same bounded
// invocation pattern as the diskpart executor.
package imaging

import (
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"code.cloudfoundry.org/clock"
)

const terminateGracePeriod = 5 * time.Second

// Image restores take far longer than partitioning commands.
const (
	RestoreTimeout    = 20 * time.Minute
	BootRepairTimeout = 2 * time.Minute
)

type toolRunner struct {
	runner      boshsys.CmdRunner
	timeService clock.Clock
	logger      boshlog.Logger
	logTag      string
}

type TimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e TimeoutError) Error() string {
	return e.Tool + " did not finish within " + e.Timeout.String()
}

func (t toolRunner) run(cmd boshsys.Command, timeout time.Duration) (boshsys.Result, error) {
	process, err := t.runner.RunComplexCommandAsync(cmd)
	if err != nil {
		return boshsys.Result{}, bosherr.WrapErrorf(err, "Starting %s", cmd.Name)
	}

	var result boshsys.Result
	timedOut := false

	for processExitedCh := process.Wait(); processExitedCh != nil; {
		select {
		case result = <-processExitedCh:
			processExitedCh = nil
		case <-t.timeService.After(timeout):
			timedOut = true
			err := process.TerminateNicely(terminateGracePeriod)
			if err != nil {
				t.logger.Error(t.logTag, "Failed to terminate %s: %s", cmd.Name, err.Error())
			}
		}
	}

	if timedOut {
		return boshsys.Result{}, TimeoutError{Tool: cmd.Name, Timeout: timeout}
	}

	if result.Error != nil && result.ExitStatus == -1 {
		return boshsys.Result{}, bosherr.WrapErrorf(result.Error, "Running %s", cmd.Name)
	}

	return result, nil
}
