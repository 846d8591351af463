// Package step holds the named units of work shared by the GPT initializer
// and the partition creator, and the terminal outcome of each unit.
package step

import "fmt"

type Name string

const (
	SelectDisk         Name = "SelectingDisk"
	Clean              Name = "Cleaning"
	ConvertGPT         Name = "ConvertingGPT"
	CheckMSR           Name = "CheckingMSR"
	DeleteMSR          Name = "DeletingMSR"
	VerifyGPT          Name = "VerifyingGPT"
	CreatePrimary1     Name = "CreatingPrimary1"
	FormatPrimary1     Name = "FormattingPrimary1"
	AssignLetter1      Name = "AssigningLetter1"
	CreatePrimary2and3 Name = "CreatingPrimary2and3"
	FormatPrimary2and3 Name = "FormattingPrimary2and3"
	AssignLetter2      Name = "AssigningLetter2"
	CreateEFI          Name = "CreatingEFI"
	FormatEFI          Name = "FormattingEFI"
	AssignLetterEFI    Name = "AssigningLetterEFI"
	VerifyPartitions   Name = "VerifyingPartitions"
	RestoreImage       Name = "RestoringImage"
	RepairBootLoader   Name = "RepairingBootLoader"
	CopyPayload        Name = "CopyingPayload"
)

type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusVerificationFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	case StatusVerificationFailed:
		return "VerificationFailed"
	}
	return "Unknown"
}

// Outcome is terminal for a run: any non-succeeded outcome halts the
// remaining sequence.
type Outcome struct {
	Name   Name
	Status Status

	// Detail carries the raw tool output for failed steps.
	Detail string

	// Expected and Observed are set only for verification failures.
	Expected string
	Observed string
}

func Succeeded(name Name) Outcome {
	return Outcome{Name: name, Status: StatusSucceeded}
}

func Failed(name Name, detail string) Outcome {
	return Outcome{Name: name, Status: StatusFailed, Detail: detail}
}

func VerificationFailed(name Name, expected, observed string) Outcome {
	return Outcome{
		Name:     name,
		Status:   StatusVerificationFailed,
		Expected: expected,
		Observed: observed,
	}
}

func (o Outcome) Ok() bool {
	return o.Status == StatusSucceeded
}

func (o Outcome) Summary() string {
	switch o.Status {
	case StatusSucceeded:
		return fmt.Sprintf("%s: succeeded", o.Name)
	case StatusVerificationFailed:
		return fmt.Sprintf("%s: verification failed: expected %q, observed %q", o.Name, o.Expected, o.Observed)
	}
	return fmt.Sprintf("%s: failed: %s", o.Name, o.Detail)
}
