package imaging

import (
	"fmt"
	"strings"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/cloudfoundry/disk-provisioner/plan"
	"github.com/cloudfoundry/disk-provisioner/step"
)

// PayloadCopier places a configured folder onto the root of the data
// partition, replacing any copy left over from an earlier run.
type PayloadCopier struct {
	fs          boshsys.FileSystem
	payloadPath string
	logger      boshlog.Logger
	logTag      string
}

func NewPayloadCopier(fs boshsys.FileSystem, payloadPath string, logger boshlog.Logger) PayloadCopier {
	return PayloadCopier{
		fs:          fs,
		payloadPath: payloadPath,
		logger:      logger,
		logTag:      "PayloadCopier",
	}
}

// Copy writes the payload folder under the second user letter and verifies
// the destination ended up non-empty.
func (c PayloadCopier) Copy(p plan.Plan) step.Outcome {
	if c.payloadPath == "" {
		return step.Failed(step.CopyPayload, "No payload folder configured")
	}

	if !c.fs.FileExists(c.payloadPath) {
		return step.Failed(step.CopyPayload, fmt.Sprintf("Payload folder '%s' does not exist", c.payloadPath))
	}

	target := fmt.Sprintf(`%s:\%s`, p.LetterPrimary2, folderName(c.payloadPath))

	c.logger.Info(c.logTag, "Copying payload '%s' to '%s'", c.payloadPath, target)

	if c.fs.FileExists(target) {
		if err := c.fs.RemoveAll(target); err != nil {
			return step.Failed(step.CopyPayload, err.Error())
		}
	}

	if err := c.fs.CopyDir(c.payloadPath, target); err != nil {
		return step.Failed(step.CopyPayload, err.Error())
	}

	entries, err := c.fs.Glob(target + `\*`)
	if err != nil {
		return step.Failed(step.CopyPayload, err.Error())
	}
	if len(entries) == 0 {
		return step.VerificationFailed(step.CopyPayload, fmt.Sprintf("payload under %s", target), "empty")
	}

	return step.Succeeded(step.CopyPayload)
}

// folderName takes the last element of a path with either separator, since
// payload sources are Windows paths while tests may build POSIX ones.
func folderName(path string) string {
	trimmed := strings.TrimRight(path, `\/`)
	if i := strings.LastIndexAny(trimmed, `\/`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
