package diskpart

import (
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"code.cloudfoundry.org/clock"
)

const (
	scriptFilePrefix     = "diskpart-script"
	terminateGracePeriod = 5 * time.Second
)

// ScriptExecutor writes each script to a temp file and runs
// diskpart.exe /s against it, bounded by the caller's timeout. Invocations
// block; a second script is never issued while one is in flight.
type ScriptExecutor struct {
	fs          boshsys.FileSystem
	runner      boshsys.CmdRunner
	timeService clock.Clock
	logger      boshlog.Logger
	logTag      string
}

func NewScriptExecutor(
	fs boshsys.FileSystem,
	runner boshsys.CmdRunner,
	timeService clock.Clock,
	logger boshlog.Logger,
) *ScriptExecutor {
	return &ScriptExecutor{
		fs:          fs,
		runner:      runner,
		timeService: timeService,
		logger:      logger,
		logTag:      "DiskpartExecutor",
	}
}

func (e *ScriptExecutor) Run(script Script, timeout time.Duration) (Result, error) {
	file, err := e.fs.TempFile(scriptFilePrefix)
	if err != nil {
		return Result{}, bosherr.WrapError(err, "Creating diskpart script file")
	}

	scriptPath := file.Name()
	defer func() {
		_ = e.fs.RemoveAll(scriptPath)
	}()

	_, err = file.Write([]byte(script.Contents()))
	if err != nil {
		return Result{}, bosherr.WrapError(err, "Writing diskpart script file")
	}

	err = file.Close()
	if err != nil {
		return Result{}, bosherr.WrapError(err, "Closing diskpart script file")
	}

	e.logger.DebugWithDetails(e.logTag, "Running diskpart script", script.Contents())

	process, err := e.runner.RunComplexCommandAsync(boshsys.Command{
		Name: Executable,
		Args: []string{"/s", scriptPath},
	})
	if err != nil {
		return Result{}, bosherr.WrapError(err, "Starting diskpart")
	}

	var result boshsys.Result
	timedOut := false

	for processExitedCh := process.Wait(); processExitedCh != nil; {
		select {
		case result = <-processExitedCh:
			processExitedCh = nil
		case <-e.timeService.After(timeout):
			timedOut = true
			// A timed-out diskpart has unknown side effects; terminate and
			// surface the timeout rather than waiting indefinitely.
			err := process.TerminateNicely(terminateGracePeriod)
			if err != nil {
				e.logger.Error(e.logTag, "Failed to terminate diskpart: %s", err.Error())
			}
		}
	}

	if timedOut {
		return Result{}, TimeoutError{Timeout: timeout}
	}

	if result.Error != nil && result.ExitStatus == -1 {
		return Result{}, bosherr.WrapError(result.Error, "Running diskpart")
	}

	e.logger.Debug(e.logTag, "Diskpart finished with exit status %d", result.ExitStatus)

	return Result{
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitStatus: result.ExitStatus,
	}, nil
}
