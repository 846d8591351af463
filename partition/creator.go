// Package partition contains the state machine that lays user partitions
// onto a disk already verified as GPT: the first primary, the two
// partitions splitting the remaining space, and the EFI partition, each
// formatted and letter-assigned with the binding re-checked after every
// assignment.
package partition

import (
	"fmt"
	"strconv"
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

// Partition numbers follow creation order on the cleaned disk.
const (
	primary1Number  = 1
	primary2Number  = 2
	primary3Number  = 3
	efiNumber       = 4
	totalPartitions = 4
)

const (
	ntfsFileSystem  = "NTFS"
	fat32FileSystem = "FAT32"
)

type Creator struct {
	executor  diskpart.Executor
	inventory disk.Manager
	timeout   time.Duration
	logger    boshlog.Logger
	logTag    string
}

func NewCreator(
	executor diskpart.Executor,
	inventory disk.Manager,
	timeout time.Duration,
	logger boshlog.Logger,
) *Creator {
	return &Creator{
		executor:  executor,
		inventory: inventory,
		timeout:   timeout,
		logger:    logger,
		logTag:    "PartitionCreator",
	}
}

// Create must only be called after the GPT initializer reached Verified.
// The second user letter goes to the first of the two split partitions; the
// other split partition stays letterless.
func (c *Creator) Create(p plan.Plan, d disk.Descriptor) (State, []step.Outcome) {
	var outcomes []step.Outcome

	record := func(outcome step.Outcome) bool {
		c.logger.Info(c.logTag, "Disk %d: %s", p.DiskIndex, outcome.Summary())
		outcomes = append(outcomes, outcome)
		return outcome.Ok()
	}

	selectDisk := fmt.Sprintf("select disk %d", p.DiskIndex)
	secondarySizeMB := p.SecondarySizeMB(d.CapacityMB())

	if !record(c.runScript(step.SelectDisk, diskpart.NewScript(selectDisk))) {
		return StateFailed, outcomes
	}

	createPrimary1 := diskpart.NewScript(
		selectDisk,
		fmt.Sprintf("create partition primary size=%d", p.PrimarySizeMB),
	)
	if !record(c.createAndCount(step.CreatePrimary1, createPrimary1, p.DiskIndex, primary1Number)) {
		return StateFailed, outcomes
	}

	formatPrimary1 := diskpart.NewScript(
		selectDisk,
		fmt.Sprintf("select partition %d", primary1Number),
		"format quick fs=ntfs override",
	)
	if !record(c.runScript(step.FormatPrimary1, formatPrimary1)) {
		return StateFailed, outcomes
	}

	if !record(c.assignLetter(step.AssignLetter1, p.DiskIndex, primary1Number, p.LetterPrimary1)) {
		return StateFailed, outcomes
	}

	createSplit := diskpart.NewScript(
		selectDisk,
		fmt.Sprintf("create partition primary size=%d", secondarySizeMB),
		fmt.Sprintf("create partition primary size=%d", secondarySizeMB),
	)
	if !record(c.createAndCount(step.CreatePrimary2and3, createSplit, p.DiskIndex, primary3Number)) {
		return StateFailed, outcomes
	}

	formatSplit := diskpart.NewScript(
		selectDisk,
		fmt.Sprintf("select partition %d", primary2Number),
		"format quick fs=ntfs override",
		fmt.Sprintf("select partition %d", primary3Number),
		"format quick fs=ntfs override",
	)
	if !record(c.runScript(step.FormatPrimary2and3, formatSplit)) {
		return StateFailed, outcomes
	}

	if !record(c.assignLetter(step.AssignLetter2, p.DiskIndex, primary2Number, p.LetterPrimary2)) {
		return StateFailed, outcomes
	}

	createEFI := diskpart.NewScript(
		selectDisk,
		fmt.Sprintf("create partition efi size=%d", p.EFISizeMB),
	)
	if !record(c.createAndCount(step.CreateEFI, createEFI, p.DiskIndex, efiNumber)) {
		return StateFailed, outcomes
	}

	formatEFI := diskpart.NewScript(
		selectDisk,
		fmt.Sprintf("select partition %d", efiNumber),
		"format fs=fat32 quick label=EFI",
	)
	if !record(c.runScript(step.FormatEFI, formatEFI)) {
		return StateFailed, outcomes
	}

	if !record(c.assignLetter(step.AssignLetterEFI, p.DiskIndex, efiNumber, p.LetterEFI)) {
		return StateFailed, outcomes
	}

	if !record(c.verify(p)) {
		return StateFailed, outcomes
	}

	return StateVerified, outcomes
}

func (c *Creator) runScript(name step.Name, script diskpart.Script) step.Outcome {
	result, err := c.executor.Run(script, c.timeout)
	if err != nil {
		return step.Failed(name, err.Error())
	}
	if !result.Succeeded() {
		return step.Failed(name, result.Output())
	}
	return step.Succeeded(name)
}

// createAndCount re-reads the partition count after a create script so a
// silently ignored create cannot pass on exit status alone.
func (c *Creator) createAndCount(name step.Name, script diskpart.Script, diskIndex, expectedCount int) step.Outcome {
	outcome := c.runScript(name, script)
	if !outcome.Ok() {
		return outcome
	}

	count, err := c.inventory.GetPartitionCount(diskIndex)
	if err != nil {
		return step.Failed(name, err.Error())
	}
	if count != expectedCount {
		return step.VerificationFailed(name,
			fmt.Sprintf("%d partitions", expectedCount),
			fmt.Sprintf("%d partitions", count),
		)
	}
	return outcome
}

func (c *Creator) assignLetter(name step.Name, diskIndex, partitionNumber int, letter string) step.Outcome {
	script := diskpart.NewScript(
		fmt.Sprintf("select disk %d", diskIndex),
		fmt.Sprintf("select partition %d", partitionNumber),
		fmt.Sprintf("assign letter=%s", letter),
	)

	outcome := c.runScript(name, script)
	if !outcome.Ok() {
		return outcome
	}

	letters, err := c.inventory.GetDiskLetters(diskIndex)
	if err != nil {
		return step.Failed(name, err.Error())
	}
	for _, bound := range letters {
		if bound == letter {
			return outcome
		}
	}
	return step.VerificationFailed(name,
		fmt.Sprintf("letter %s bound to partition %d", letter, partitionNumber),
		fmt.Sprintf("letters %v", letters),
	)
}

func (c *Creator) verify(p plan.Plan) step.Outcome {
	letters, err := c.inventory.GetDiskLetters(p.DiskIndex)
	if err != nil {
		return step.Failed(step.VerifyPartitions, err.Error())
	}

	bound := make(map[string]bool, len(letters))
	for _, letter := range letters {
		bound[letter] = true
	}
	for _, wanted := range p.Letters() {
		if !bound[wanted] {
			return step.VerificationFailed(step.VerifyPartitions,
				fmt.Sprintf("letter %s bound", wanted),
				fmt.Sprintf("letters %v", letters),
			)
		}
	}

	expectedFileSystems := []struct {
		letter     string
		fileSystem string
	}{
		{p.LetterPrimary1, ntfsFileSystem},
		{p.LetterPrimary2, ntfsFileSystem},
		{p.LetterEFI, fat32FileSystem},
	}
	for _, expected := range expectedFileSystems {
		fileSystem, err := c.inventory.GetVolumeFileSystem(expected.letter)
		if err != nil {
			return step.Failed(step.VerifyPartitions, err.Error())
		}
		if fileSystem != expected.fileSystem {
			return step.VerificationFailed(step.VerifyPartitions,
				fmt.Sprintf("%s on %s", expected.fileSystem, expected.letter),
				fmt.Sprintf("%s on %s", fileSystem, expected.letter),
			)
		}
	}

	count, err := c.inventory.GetPartitionCount(p.DiskIndex)
	if err != nil {
		return step.Failed(step.VerifyPartitions, err.Error())
	}
	if count != totalPartitions {
		return step.VerificationFailed(step.VerifyPartitions,
			strconv.Itoa(totalPartitions)+" partitions",
			strconv.Itoa(count)+" partitions",
		)
	}

	return step.Succeeded(step.VerifyPartitions)
}
