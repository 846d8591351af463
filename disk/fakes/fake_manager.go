package fakes

import (
	boshdisk "github.com/cloudfoundry/disk-provisioner/disk"
)

// FakeManager queues answers per query; queues are consumed in call order
// and the last element is sticky once the queue drains.
type FakeManager struct {
	Descriptors    map[int]boshdisk.Descriptor
	GetDiskErr     error
	GetDiskIndexes []int

	GetDisksDescriptors []boshdisk.Descriptor
	GetDisksErr         error

	PartitionStyleResults []string
	PartitionStyleErr     error

	PartitionCountResults []int
	PartitionCountErr     error

	ReservedPartitionResults []bool
	ReservedPartitionErr     error

	DiskLettersResults [][]string
	DiskLettersErr     error

	VolumeFileSystems   map[string]string
	VolumeFileSystemErr error
}

func NewFakeManager() *FakeManager {
	return &FakeManager{
		Descriptors:       make(map[int]boshdisk.Descriptor),
		VolumeFileSystems: make(map[string]string),
	}
}

func (m *FakeManager) GetDisk(index int) (boshdisk.Descriptor, error) {
	m.GetDiskIndexes = append(m.GetDiskIndexes, index)
	if m.GetDiskErr != nil {
		return boshdisk.Descriptor{}, m.GetDiskErr
	}
	descriptor, found := m.Descriptors[index]
	if !found {
		return boshdisk.Descriptor{}, boshdisk.NotFoundError{Index: index}
	}
	return descriptor, nil
}

func (m *FakeManager) GetDisks() ([]boshdisk.Descriptor, error) {
	return m.GetDisksDescriptors, m.GetDisksErr
}

func (m *FakeManager) GetPartitionStyle(index int) (string, error) {
	if m.PartitionStyleErr != nil {
		return "", m.PartitionStyleErr
	}
	var style string
	style, m.PartitionStyleResults = popString(m.PartitionStyleResults)
	return style, nil
}

func (m *FakeManager) GetPartitionCount(index int) (int, error) {
	if m.PartitionCountErr != nil {
		return 0, m.PartitionCountErr
	}
	var count int
	count, m.PartitionCountResults = popInt(m.PartitionCountResults)
	return count, nil
}

func (m *FakeManager) HasReservedPartition(index int) (bool, error) {
	if m.ReservedPartitionErr != nil {
		return false, m.ReservedPartitionErr
	}
	var present bool
	present, m.ReservedPartitionResults = popBool(m.ReservedPartitionResults)
	return present, nil
}

func (m *FakeManager) GetDiskLetters(index int) ([]string, error) {
	if m.DiskLettersErr != nil {
		return nil, m.DiskLettersErr
	}
	var letters []string
	letters, m.DiskLettersResults = popLetters(m.DiskLettersResults)
	return letters, nil
}

func (m *FakeManager) GetVolumeFileSystem(letter string) (string, error) {
	if m.VolumeFileSystemErr != nil {
		return "", m.VolumeFileSystemErr
	}
	return m.VolumeFileSystems[letter], nil
}

func popString(queue []string) (string, []string) {
	if len(queue) == 0 {
		return "", queue
	}
	if len(queue) == 1 {
		return queue[0], queue
	}
	return queue[0], queue[1:]
}

func popInt(queue []int) (int, []int) {
	if len(queue) == 0 {
		return 0, queue
	}
	if len(queue) == 1 {
		return queue[0], queue
	}
	return queue[0], queue[1:]
}

func popBool(queue []bool) (bool, []bool) {
	if len(queue) == 0 {
		return false, queue
	}
	if len(queue) == 1 {
		return queue[0], queue
	}
	return queue[0], queue[1:]
}

func popLetters(queue [][]string) ([]string, [][]string) {
	if len(queue) == 0 {
		return nil, queue
	}
	if len(queue) == 1 {
		return queue[0], queue
	}
	return queue[0], queue[1:]
}
