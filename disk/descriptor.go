package disk

const bytesPerMB = 1024 * 1024

// Descriptor is a read-only snapshot of a physical disk, fetched once per
// provisioning run and never mutated.
type Descriptor struct {
	Index          int
	Name           string
	CapacityBytes  uint64
	PartitionStyle string

	// ExistingLetters holds every drive letter assigned anywhere on the
	// system, not only on this disk.
	ExistingLetters []string
}

func (d Descriptor) HasLetter(letter string) bool {
	for _, existing := range d.ExistingLetters {
		if existing == letter {
			return true
		}
	}
	return false
}

// CapacityMB truncates, so a disk reporting a partial trailing megabyte is
// treated as the smaller whole number of megabytes.
func (d Descriptor) CapacityMB() int {
	return int(d.CapacityBytes / bytesPerMB)
}
