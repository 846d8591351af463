package disk

import "fmt"

// Manager answers read-only questions about physical disks. Mutating
// commands never go through here; state machines re-read disk state through
// a Manager after every mutation instead of trusting tool exit status.
type Manager interface {
	GetDisk(index int) (Descriptor, error)
	GetDisks() ([]Descriptor, error)
	GetPartitionStyle(index int) (string, error)
	GetPartitionCount(index int) (int, error)
	HasReservedPartition(index int) (bool, error)
	GetDiskLetters(index int) ([]string, error)
	GetVolumeFileSystem(letter string) (string, error)
}

type NotFoundError struct {
	Index int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("Disk %d not found", e.Index)
}
