// Package orchestrator runs a provisioning plan end to end: privilege check,
// disk lookup, plan validation, GPT initialization, partition creation and
// the optional image restore and boot repair stages. Nothing touches the
// disk until the plan has validated.
package orchestrator

import (
	"fmt"
	"sync"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshuuid "github.com/cloudfoundry/bosh-utils/uuid"

	"github.com/cloudfoundry/disk-provisioner/disk"
	"github.com/cloudfoundry/disk-provisioner/gpt"
	"github.com/cloudfoundry/disk-provisioner/partition"
	"github.com/cloudfoundry/disk-provisioner/plan"
	"github.com/cloudfoundry/disk-provisioner/step"
)

const logTag = "Orchestrator"

// Stage names reported in RunResult.FailedAt for failures that happen before
// any step runs. Once a state machine or imaging stage produces outcomes,
// FailedAt carries the failing step's name instead.
const (
	StagePrivilegeCheck  = "PrivilegeCheck"
	StageDiskLookup      = "DiskLookup"
	StageValidation      = "Validation"
	StageGPTInitialize   = "GPTInitialize"
	StagePartitionCreate = "PartitionCreate"
)

type PrivilegeError struct{}

func (e PrivilegeError) Error() string {
	return "Administrator privilege is required"
}

type ProtectedDiskError struct {
	Index int
	Name  string
}

func (e ProtectedDiskError) Error() string {
	return fmt.Sprintf("Disk %d ('%s') is protected and cannot be provisioned", e.Index, e.Name)
}

type BusyDiskError struct {
	Index int
}

func (e BusyDiskError) Error() string {
	return fmt.Sprintf("Disk %d is already being provisioned", e.Index)
}

type GPTInitializer interface {
	Initialize(p plan.Plan) (gpt.State, []step.Outcome)
}

type PartitionCreator interface {
	Create(p plan.Plan, d disk.Descriptor) (partition.State, []step.Outcome)
}

type ImageRestorer interface {
	Restore(p plan.Plan) step.Outcome
}

type BootLoaderRepairer interface {
	Repair(p plan.Plan) step.Outcome
}

type PayloadCopier interface {
	Copy(p plan.Plan) step.Outcome
}

// RunResult describes a finished run. FailedAt and Detail are empty when the
// run succeeded. Steps holds every step outcome in execution order.
type RunResult struct {
	RunID     string
	DiskIndex int
	Plan      plan.Plan
	Success   bool
	FailedAt  string
	Detail    string
	Steps     []step.Outcome
}

// Options toggles the post-partition stages for a single run.
type Options struct {
	RestoreImage     bool
	RepairBootLoader bool
	CopyPayload      bool
}

type Orchestrator struct {
	privilege      disk.PrivilegeChecker
	inventory      disk.Manager
	initializer    GPTInitializer
	creator        PartitionCreator
	restorer       ImageRestorer
	bootRepairer   BootLoaderRepairer
	payloadCopier  PayloadCopier
	uuidGen        boshuuid.Generator
	protectedNames []string
	logger         boshlog.Logger

	busyLock  sync.Mutex
	busyDisks map[int]struct{}
}

func NewOrchestrator(
	privilege disk.PrivilegeChecker,
	inventory disk.Manager,
	initializer GPTInitializer,
	creator PartitionCreator,
	restorer ImageRestorer,
	bootRepairer BootLoaderRepairer,
	payloadCopier PayloadCopier,
	uuidGen boshuuid.Generator,
	protectedNames []string,
	logger boshlog.Logger,
) *Orchestrator {
	return &Orchestrator{
		privilege:      privilege,
		inventory:      inventory,
		initializer:    initializer,
		creator:        creator,
		restorer:       restorer,
		bootRepairer:   bootRepairer,
		payloadCopier:  payloadCopier,
		uuidGen:        uuidGen,
		protectedNames: protectedNames,
		logger:         logger,
		busyDisks:      map[int]struct{}{},
	}
}

// Run executes the full provisioning sequence for the plan. It holds an
// exclusive claim on the disk index for the duration of the run, so two
// concurrent runs against the same disk never interleave.
func (o *Orchestrator) Run(p plan.Plan, opts Options) (RunResult, error) {
	runID, err := o.uuidGen.Generate()
	if err != nil {
		runID = "unknown"
	}

	result := RunResult{
		RunID:     runID,
		DiskIndex: p.DiskIndex,
		Plan:      p,
	}

	if err := o.claimDisk(p.DiskIndex); err != nil {
		return o.failed(result, StageDiskLookup, err.Error()), err
	}
	defer o.releaseDisk(p.DiskIndex)

	o.logger.Info(logTag, "Run %s: provisioning disk %d with plan %s", runID, p.DiskIndex, p.String())

	if !o.privilege.HasElevatedPrivilege() {
		err := PrivilegeError{}
		return o.failed(result, StagePrivilegeCheck, err.Error()), err
	}

	descriptor, err := o.inventory.GetDisk(p.DiskIndex)
	if err != nil {
		return o.failed(result, StageDiskLookup, err.Error()), err
	}

	if name, protected := o.isProtected(descriptor); protected {
		err := ProtectedDiskError{Index: p.DiskIndex, Name: name}
		return o.failed(result, StageDiskLookup, err.Error()), err
	}

	if err := plan.Validate(p, descriptor); err != nil {
		return o.failed(result, StageValidation, err.Error()), err
	}

	gptState, gptSteps := o.initializer.Initialize(p)
	result.Steps = append(result.Steps, gptSteps...)
	if gptState != gpt.StateVerified {
		return o.failedStep(result, StageGPTInitialize, gptSteps), nil
	}

	partState, partSteps := o.creator.Create(p, descriptor)
	result.Steps = append(result.Steps, partSteps...)
	if partState != partition.StateVerified {
		return o.failedStep(result, StagePartitionCreate, partSteps), nil
	}

	if opts.RestoreImage {
		outcome := o.restorer.Restore(p)
		result.Steps = append(result.Steps, outcome)
		if !outcome.Ok() {
			return o.failed(result, string(outcome.Name), outcome.Summary()), nil
		}
	}

	if opts.RepairBootLoader {
		outcome := o.bootRepairer.Repair(p)
		result.Steps = append(result.Steps, outcome)
		if !outcome.Ok() {
			return o.failed(result, string(outcome.Name), outcome.Summary()), nil
		}
	}

	if opts.CopyPayload {
		outcome := o.payloadCopier.Copy(p)
		result.Steps = append(result.Steps, outcome)
		if !outcome.Ok() {
			return o.failed(result, string(outcome.Name), outcome.Summary()), nil
		}
	}

	result.Success = true
	o.logger.Info(logTag, "Run %s: disk %d provisioned", runID, p.DiskIndex)
	return result, nil
}

func (o *Orchestrator) claimDisk(index int) error {
	o.busyLock.Lock()
	defer o.busyLock.Unlock()

	if _, busy := o.busyDisks[index]; busy {
		return BusyDiskError{Index: index}
	}

	o.busyDisks[index] = struct{}{}
	return nil
}

func (o *Orchestrator) releaseDisk(index int) {
	o.busyLock.Lock()
	defer o.busyLock.Unlock()
	delete(o.busyDisks, index)
}

func (o *Orchestrator) isProtected(d disk.Descriptor) (string, bool) {
	for _, name := range o.protectedNames {
		if name != "" && name == d.Name {
			return name, true
		}
	}
	return "", false
}

func (o *Orchestrator) failed(result RunResult, stage, detail string) RunResult {
	result.Success = false
	result.FailedAt = stage
	result.Detail = detail
	o.logger.Error(logTag, "Run %s: disk %d failed at %s: %s", result.RunID, result.DiskIndex, stage, detail)
	return result
}

// failedStep reports the failing step by name so callers see which
// transition halted the machine, falling back to the stage name when the
// machine produced no failing outcome.
func (o *Orchestrator) failedStep(result RunResult, stage string, outcomes []step.Outcome) RunResult {
	for i := len(outcomes) - 1; i >= 0; i-- {
		if !outcomes[i].Ok() {
			return o.failed(result, string(outcomes[i].Name), outcomes[i].Summary())
		}
	}
	return o.failed(result, stage, "")
}
