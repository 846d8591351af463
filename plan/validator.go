package plan

import (
	"fmt"

	"github.com/cloudfoundry/disk-provisioner/disk"
)

type Reason string

const (
	ReasonInvalidParameter    Reason = "InvalidParameter"
	ReasonInvalidLetterFormat Reason = "InvalidLetterFormat"
	ReasonDuplicateLetter     Reason = "DuplicateLetter"
	ReasonReservedLetter      Reason = "ReservedLetter"
	ReasonLetterConflict      Reason = "LetterConflict"
	ReasonDiskMismatch        Reason = "DiskMismatch"
	ReasonCapacityExceeded    Reason = "CapacityExceeded"
)

// C and D stay with the running system.
var reservedLetters = []string{"C", "D"}

// Each of the two split partitions must end up at least this large, or the
// create script would ask diskpart for a zero-size partition.
const minSplitSizeMB = 1

type ValidationError struct {
	Reason  Reason
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Validate checks a plan against static rules and one disk snapshot. It is
// pure: no side effects, identical results for identical inputs. Checks are
// ordered and the first failure wins; a nil return means the plan may be
// handed to the state machines.
func Validate(p Plan, d disk.Descriptor) error {
	if p.DiskIndex < 0 {
		return ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("disk index %d must be non-negative", p.DiskIndex),
		}
	}
	if p.EFISizeMB <= 0 {
		return ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("EFI size %dMB must be positive", p.EFISizeMB),
		}
	}
	if p.PrimarySizeMB <= 0 {
		return ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("primary size %dMB must be positive", p.PrimarySizeMB),
		}
	}

	for _, letter := range p.Letters() {
		if !isUppercaseLetter(letter) {
			return ValidationError{
				Reason:  ReasonInvalidLetterFormat,
				Message: fmt.Sprintf("drive letter %q must be a single letter A-Z", letter),
			}
		}
	}

	if p.LetterPrimary1 == p.LetterPrimary2 ||
		p.LetterPrimary1 == p.LetterEFI ||
		p.LetterPrimary2 == p.LetterEFI {
		return ValidationError{
			Reason:  ReasonDuplicateLetter,
			Message: "the three drive letters must be distinct",
		}
	}

	for _, letter := range p.Letters() {
		for _, reserved := range reservedLetters {
			if letter == reserved {
				return ValidationError{
					Reason:  ReasonReservedLetter,
					Message: fmt.Sprintf("drive letter %s is reserved for the running system", letter),
				}
			}
		}
	}

	for _, letter := range p.Letters() {
		if d.HasLetter(letter) {
			return ValidationError{
				Reason:  ReasonLetterConflict,
				Message: fmt.Sprintf("drive letter %s is already assigned", letter),
			}
		}
	}

	if p.DiskIndex != d.Index {
		return ValidationError{
			Reason:  ReasonDiskMismatch,
			Message: fmt.Sprintf("plan targets disk %d but descriptor is for disk %d", p.DiskIndex, d.Index),
		}
	}

	if p.PrimarySizeMB+p.EFISizeMB+2*minSplitSizeMB > d.CapacityMB() {
		return ValidationError{
			Reason: ReasonCapacityExceeded,
			Message: fmt.Sprintf(
				"planned footprint %dMB plus split partitions exceeds disk capacity %dMB",
				p.PrimarySizeMB+p.EFISizeMB, d.CapacityMB(),
			),
		}
	}

	return nil
}

func isUppercaseLetter(letter string) bool {
	return len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z'
}
