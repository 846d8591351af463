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

// BootRepairer rebuilds the UEFI boot files on the EFI partition with
// bcdboot, pointing it at the Windows directory on the first primary
// partition.
type BootRepairer struct {
	toolRunner

	fs          boshsys.FileSystem
	bcdbootPath string
	timeout     time.Duration
}

func NewBootRepairer(
	fs boshsys.FileSystem,
	runner boshsys.CmdRunner,
	timeService clock.Clock,
	bcdbootPath string,
	timeout time.Duration,
	logger boshlog.Logger,
) BootRepairer {
	return BootRepairer{
		toolRunner: toolRunner{
			runner:      runner,
			timeService: timeService,
			logger:      logger,
			logTag:      "BootRepairer",
		},
		fs:          fs,
		bcdbootPath: bcdbootPath,
		timeout:     timeout,
	}
}

// Repair runs bcdboot and verifies that the EFI partition ended up with a
// populated EFI directory.
func (b BootRepairer) Repair(p plan.Plan) step.Outcome {
	if !b.fs.FileExists(b.bcdbootPath) {
		return step.Failed(step.RepairBootLoader, fmt.Sprintf("bcdboot executable '%s' does not exist", b.bcdbootPath))
	}

	windowsDir := fmt.Sprintf(`%s:\Windows`, p.LetterPrimary1)
	efiRoot := fmt.Sprintf(`%s:`, p.LetterEFI)

	b.logger.Info(b.logTag, "Repairing boot loader for '%s' on '%s'", windowsDir, efiRoot)

	result, err := b.run(boshsys.Command{
		Name: b.bcdbootPath,
		Args: []string{windowsDir, "/s", efiRoot, "/f", "UEFI"},
	}, b.timeout)
	if err != nil {
		return step.Failed(step.RepairBootLoader, err.Error())
	}

	if result.ExitStatus != 0 {
		return step.Failed(step.RepairBootLoader, fmt.Sprintf("bcdboot exited with status %d: %s", result.ExitStatus, result.Stderr))
	}

	efiDir := fmt.Sprintf(`%s:\EFI`, p.LetterEFI)
	entries, err := b.fs.Glob(efiDir + `\*`)
	if err != nil {
		return step.Failed(step.RepairBootLoader, err.Error())
	}

	if len(entries) == 0 {
		return step.VerificationFailed(step.RepairBootLoader, fmt.Sprintf("boot files under %s", efiDir), "none")
	}

	return step.Succeeded(step.RepairBootLoader)
}
