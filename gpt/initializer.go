// Package gpt contains the state machine that takes a raw or previously
// partitioned disk to a clean GPT layout: clean, convert, drop the
// Microsoft Reserved partition, then confirm the disk really reports GPT.
package gpt

import (
	"fmt"
	"time"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/disk-provisioner/disk"
	"github.com/cloudfoundry/disk-provisioner/diskpart"
	"github.com/cloudfoundry/disk-provisioner/plan"
	"github.com/cloudfoundry/disk-provisioner/step"
)

type State string

const (
	StateVerified State = "Verified"
	StateFailed   State = "Failed"
)

const gptPartitionStyle = "GPT"

type Initializer struct {
	executor  diskpart.Executor
	inventory disk.Manager
	timeout   time.Duration
	logger    boshlog.Logger
	logTag    string
}

func NewInitializer(
	executor diskpart.Executor,
	inventory disk.Manager,
	timeout time.Duration,
	logger boshlog.Logger,
) *Initializer {
	return &Initializer{
		executor:  executor,
		inventory: inventory,
		timeout:   timeout,
		logger:    logger,
		logTag:    "GPTInitializer",
	}
}

// Initialize walks the fixed state order and halts on the first
// non-succeeded outcome. Destructive steps are never retried; a partially
// initialized disk is reported, not repaired.
func (i *Initializer) Initialize(p plan.Plan) (State, []step.Outcome) {
	var outcomes []step.Outcome

	record := func(outcome step.Outcome) bool {
		i.logger.Info(i.logTag, "Disk %d: %s", p.DiskIndex, outcome.Summary())
		outcomes = append(outcomes, outcome)
		return outcome.Ok()
	}

	selectDisk := fmt.Sprintf("select disk %d", p.DiskIndex)

	if !record(i.runScript(step.SelectDisk, diskpart.NewScript(selectDisk))) {
		return StateFailed, outcomes
	}

	if !record(i.runScript(step.Clean, diskpart.NewScript(selectDisk, "clean"))) {
		return StateFailed, outcomes
	}

	if !record(i.runScript(step.ConvertGPT, diskpart.NewScript(selectDisk, "convert gpt"))) {
		return StateFailed, outcomes
	}

	reservedPresent, err := i.inventory.HasReservedPartition(p.DiskIndex)
	if err != nil {
		record(step.Failed(step.CheckMSR, err.Error()))
		return StateFailed, outcomes
	}
	record(step.Succeeded(step.CheckMSR))

	if reservedPresent {
		deleteMSR := diskpart.NewScript(
			selectDisk,
			"select partition 1",
			"delete partition override",
		)
		if !record(i.runScript(step.DeleteMSR, deleteMSR)) {
			return StateFailed, outcomes
		}
	}

	if !record(i.verify(p.DiskIndex)) {
		return StateFailed, outcomes
	}

	return StateVerified, outcomes
}

func (i *Initializer) runScript(name step.Name, script diskpart.Script) step.Outcome {
	result, err := i.executor.Run(script, i.timeout)
	if err != nil {
		return step.Failed(name, err.Error())
	}
	if !result.Succeeded() {
		return step.Failed(name, result.Output())
	}
	return step.Succeeded(name)
}

// verify reads disk state back rather than trusting diskpart's exit status:
// a zero exit is necessary but not sufficient.
func (i *Initializer) verify(diskIndex int) step.Outcome {
	style, err := i.inventory.GetPartitionStyle(diskIndex)
	if err != nil {
		return step.Failed(step.VerifyGPT, err.Error())
	}
	if style != gptPartitionStyle {
		return step.VerificationFailed(step.VerifyGPT, gptPartitionStyle, style)
	}

	reservedPresent, err := i.inventory.HasReservedPartition(diskIndex)
	if err != nil {
		return step.Failed(step.VerifyGPT, err.Error())
	}
	if reservedPresent {
		return step.VerificationFailed(step.VerifyGPT, "no reserved partition", "reserved partition present")
	}

	return step.Succeeded(step.VerifyGPT)
}
