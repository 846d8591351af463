package disk

import (
	"fmt"
	"strconv"
	"strings"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

const powershellExecutable = "powershell.exe"

// PowershellManager reads disk state with powershell storage cmdlets. It is
// the only read path; diskpart output is never parsed for correctness.
type PowershellManager struct {
	runner boshsys.CmdRunner
	logger boshlog.Logger
	logTag string
}

func NewPowershellManager(runner boshsys.CmdRunner, logger boshlog.Logger) *PowershellManager {
	return &PowershellManager{
		runner: runner,
		logger: logger,
		logTag: "PowershellDiskManager",
	}
}

func (m *PowershellManager) GetDisk(index int) (Descriptor, error) {
	name, err := m.runQuery(fmt.Sprintf(
		"Get-Disk -Number %d | Select -ExpandProperty FriendlyName", index,
	))
	if err != nil {
		return Descriptor{}, m.translateNotFound(index, err)
	}

	sizeOutput, err := m.runQuery(fmt.Sprintf(
		"Get-Disk -Number %d | Select -ExpandProperty Size", index,
	))
	if err != nil {
		return Descriptor{}, m.translateNotFound(index, err)
	}

	capacityBytes, err := strconv.ParseUint(sizeOutput, 10, 64)
	if err != nil {
		return Descriptor{}, fmt.Errorf(
			"Failed to convert size of disk %d in to number. Output was: %q", index, sizeOutput,
		)
	}

	style, err := m.GetPartitionStyle(index)
	if err != nil {
		return Descriptor{}, err
	}

	letters, err := m.getSystemLetters()
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Index:           index,
		Name:            name,
		CapacityBytes:   capacityBytes,
		PartitionStyle:  style,
		ExistingLetters: letters,
	}, nil
}

func (m *PowershellManager) GetDisks() ([]Descriptor, error) {
	output, err := m.runQuery("Get-Disk | Select -ExpandProperty Number")
	if err != nil {
		return nil, err
	}

	var descriptors []Descriptor
	for _, line := range strings.Fields(output) {
		index, err := strconv.Atoi(line)
		if err != nil {
			continue
		}

		descriptor, err := m.GetDisk(index)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, descriptor)
	}

	return descriptors, nil
}

func (m *PowershellManager) GetPartitionStyle(index int) (string, error) {
	style, err := m.runQuery(fmt.Sprintf(
		"Get-Disk -Number %d | Select -ExpandProperty PartitionStyle", index,
	))
	if err != nil {
		return "", m.translateNotFound(index, err)
	}
	return style, nil
}

func (m *PowershellManager) GetPartitionCount(index int) (int, error) {
	output, err := m.runQuery(fmt.Sprintf(
		"Get-Disk -Number %d | Select -ExpandProperty NumberOfPartitions", index,
	))
	if err != nil {
		return 0, m.translateNotFound(index, err)
	}

	count, err := strconv.Atoi(output)
	if err != nil {
		return 0, fmt.Errorf(
			"Failed to convert partition count of disk %d in to number. Output was: %q", index, output,
		)
	}
	return count, nil
}

func (m *PowershellManager) HasReservedPartition(index int) (bool, error) {
	output, err := m.runPartitionQuery(fmt.Sprintf(
		"Get-Partition -DiskNumber %d | Select -ExpandProperty Type", index,
	))
	if err != nil {
		return false, err
	}

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(strings.TrimSpace(line), "Reserved") {
			return true, nil
		}
	}
	return false, nil
}

func (m *PowershellManager) GetDiskLetters(index int) ([]string, error) {
	output, err := m.runPartitionQuery(fmt.Sprintf(
		"Get-Partition -DiskNumber %d | Select -ExpandProperty DriveLetter", index,
	))
	if err != nil {
		return nil, err
	}
	return parseLetters(output), nil
}

func (m *PowershellManager) GetVolumeFileSystem(letter string) (string, error) {
	return m.runQuery(fmt.Sprintf(
		"Get-Volume -DriveLetter %s | Select -ExpandProperty FileSystemType", letter,
	))
}

func (m *PowershellManager) getSystemLetters() ([]string, error) {
	output, err := m.runQuery("Get-Volume | Select -ExpandProperty DriveLetter")
	if err != nil {
		return nil, err
	}
	return parseLetters(output), nil
}

func (m *PowershellManager) runQuery(query string) (string, error) {
	command := fmt.Sprintf("%s %s", powershellExecutable, query)
	commandArgs := strings.Split(command, " ")

	stdout, stderr, exitStatus, err := m.runner.RunCommand(
		commandArgs[0],
		commandArgs[1:]...,
	)

	if err != nil && exitStatus == -1 {
		return "", fmt.Errorf("Failed to run command \"%s\": %s", command, err)
	}

	if exitStatus > 0 {
		return "", fmt.Errorf("Command \"%s\" exited with failure: %s", command, stderr)
	}

	return strings.TrimSpace(stdout), nil
}

// runPartitionQuery treats "no partition objects" as an empty result: a
// freshly cleaned disk has no partitions, which is not an error.
func (m *PowershellManager) runPartitionQuery(query string) (string, error) {
	output, err := m.runQuery(query)
	if err != nil {
		if strings.Contains(err.Error(), "No MSFT_Partition objects found") {
			return "", nil
		}
		return "", err
	}
	return output, nil
}

func (m *PowershellManager) translateNotFound(index int, err error) error {
	if strings.Contains(err.Error(), "No MSFT_Disk objects found") {
		return NotFoundError{Index: index}
	}
	return err
}

func parseLetters(output string) []string {
	var letters []string
	for _, line := range strings.Split(output, "\n") {
		letter := strings.ToUpper(strings.TrimSpace(line))
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			continue
		}
		letters = append(letters, letter)
	}
	return letters
}
