// Package plan describes one partitioning request: which disk, how large the
// EFI and first primary partitions are, and which drive letters the caller
// wants bound. A Plan is immutable once constructed and lives only for the
// duration of one provisioning run.
package plan

import (
	"fmt"
	"strconv"
	"strings"
)

type Plan struct {
	DiskIndex     int
	EFISizeMB     int
	PrimarySizeMB int

	LetterPrimary1 string
	LetterPrimary2 string
	LetterEFI      string
}

// Letters returns the three requested letters in assignment order.
func (p Plan) Letters() []string {
	return []string{p.LetterPrimary1, p.LetterPrimary2, p.LetterEFI}
}

// SecondarySizeMB is the size of each of the two partitions that split the
// space left after the first primary and the EFI partition.
func (p Plan) SecondarySizeMB(capacityMB int) int {
	remaining := capacityMB - p.PrimarySizeMB - p.EFISizeMB
	if remaining < 0 {
		return 0
	}
	return remaining / 2
}

func (p Plan) String() string {
	return fmt.Sprintf(
		"disk %d: efi=%dMB primary=%dMB letters=%s,%s,%s",
		p.DiskIndex, p.EFISizeMB, p.PrimarySizeMB,
		p.LetterPrimary1, p.LetterPrimary2, p.LetterEFI,
	)
}

// ParseArgs builds a Plan from the six positional CLI values: disk index,
// EFI size (MB), primary size (MB), first letter, second letter, EFI letter.
// Letters are upcased here; everything else is checked by Validate.
func ParseArgs(args []string) (Plan, error) {
	if len(args) != 6 {
		return Plan{}, ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("expected 6 arguments, got %d", len(args)),
		}
	}

	diskIndex, err := strconv.Atoi(args[0])
	if err != nil {
		return Plan{}, ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("disk index %q is not a number", args[0]),
		}
	}

	efiSizeMB, err := strconv.Atoi(args[1])
	if err != nil {
		return Plan{}, ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("EFI size %q is not a number", args[1]),
		}
	}

	primarySizeMB, err := strconv.Atoi(args[2])
	if err != nil {
		return Plan{}, ValidationError{
			Reason:  ReasonInvalidParameter,
			Message: fmt.Sprintf("primary size %q is not a number", args[2]),
		}
	}

	return Plan{
		DiskIndex:      diskIndex,
		EFISizeMB:      efiSizeMB,
		PrimarySizeMB:  primarySizeMB,
		LetterPrimary1: strings.ToUpper(strings.TrimSpace(args[3])),
		LetterPrimary2: strings.ToUpper(strings.TrimSpace(args[4])),
		LetterEFI:      strings.ToUpper(strings.TrimSpace(args[5])),
	}, nil
}
