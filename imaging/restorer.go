package imaging

import (
	"fmt"
	"time"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"code.cloudfoundry.org/clock"

	"github.com/cloudfoundry/disk-provisioner/plan"
	"github.com/cloudfoundry/disk-provisioner/step"
)

// The image always lands on the first primary partition.
const targetPartitionNumber = 1

// Restorer clones a ghost image onto the first primary partition of the
// target disk.
type Restorer struct {
	toolRunner

	fs        boshsys.FileSystem
	ghostPath string
	imagePath string
	timeout   time.Duration
}

func NewRestorer(
	fs boshsys.FileSystem,
	runner boshsys.CmdRunner,
	timeService clock.Clock,
	ghostPath string,
	imagePath string,
	timeout time.Duration,
	logger boshlog.Logger,
) Restorer {
	return Restorer{
		toolRunner: toolRunner{
			runner:      runner,
			timeService: timeService,
			logger:      logger,
			logTag:      "ImageRestorer",
		},
		fs:        fs,
		ghostPath: ghostPath,
		imagePath: imagePath,
		timeout:   timeout,
	}
}

// Restore writes the configured image onto the first primary partition and
// verifies that a Windows directory showed up on the assigned letter.
func (r Restorer) Restore(p plan.Plan) step.Outcome {
	if !r.fs.FileExists(r.ghostPath) {
		return step.Failed(step.RestoreImage, fmt.Sprintf("Ghost executable '%s' does not exist", r.ghostPath))
	}

	if !r.fs.FileExists(r.imagePath) {
		return step.Failed(step.RestoreImage, fmt.Sprintf("Image file '%s' does not exist", r.imagePath))
	}

	cloneArg := fmt.Sprintf(
		"-clone,mode=pload,src=%s:1,dst=%d:%d",
		r.imagePath, p.DiskIndex, targetPartitionNumber,
	)

	r.logger.Info(r.logTag, "Restoring image '%s' to disk %d", r.imagePath, p.DiskIndex)

	result, err := r.run(boshsys.Command{
		Name: r.ghostPath,
		Args: []string{cloneArg, "-sure", "-ntexact"},
	}, r.timeout)
	if err != nil {
		return step.Failed(step.RestoreImage, err.Error())
	}

	if result.ExitStatus != 0 {
		return step.Failed(step.RestoreImage, fmt.Sprintf("Ghost exited with status %d: %s", result.ExitStatus, result.Stderr))
	}

	windowsDir := fmt.Sprintf(`%s:\Windows`, p.LetterPrimary1)
	if !r.fs.FileExists(windowsDir) {
		return step.VerificationFailed(step.RestoreImage, windowsDir, "missing")
	}

	return step.Succeeded(step.RestoreImage)
}
