package fakes

import (
	"github.com/cloudfoundry/disk-provisioner/disk"
	"github.com/cloudfoundry/disk-provisioner/gpt"
	"github.com/cloudfoundry/disk-provisioner/partition"
	"github.com/cloudfoundry/disk-provisioner/plan"
	"github.com/cloudfoundry/disk-provisioner/step"
)

type FakeGPTInitializer struct {
	InitializePlans []plan.Plan

	// InitializeCallBack, when set, runs before the return values are
	// produced. Tests use it to hold a run in flight.
	InitializeCallBack func(plan.Plan)

	ReturnState    gpt.State
	ReturnOutcomes []step.Outcome
}

func NewFakeGPTInitializer() *FakeGPTInitializer {
	return &FakeGPTInitializer{
		ReturnState:    gpt.StateVerified,
		ReturnOutcomes: []step.Outcome{step.Succeeded(step.VerifyGPT)},
	}
}

func (f *FakeGPTInitializer) Initialize(p plan.Plan) (gpt.State, []step.Outcome) {
	f.InitializePlans = append(f.InitializePlans, p)
	if f.InitializeCallBack != nil {
		f.InitializeCallBack(p)
	}
	return f.ReturnState, f.ReturnOutcomes
}

type FakePartitionCreator struct {
	CreatePlans       []plan.Plan
	CreateDescriptors []disk.Descriptor

	ReturnState    partition.State
	ReturnOutcomes []step.Outcome
}

func NewFakePartitionCreator() *FakePartitionCreator {
	return &FakePartitionCreator{
		ReturnState:    partition.StateVerified,
		ReturnOutcomes: []step.Outcome{step.Succeeded(step.VerifyPartitions)},
	}
}

func (f *FakePartitionCreator) Create(p plan.Plan, d disk.Descriptor) (partition.State, []step.Outcome) {
	f.CreatePlans = append(f.CreatePlans, p)
	f.CreateDescriptors = append(f.CreateDescriptors, d)
	return f.ReturnState, f.ReturnOutcomes
}

type FakeImageRestorer struct {
	RestorePlans  []plan.Plan
	ReturnOutcome step.Outcome
}

func NewFakeImageRestorer() *FakeImageRestorer {
	return &FakeImageRestorer{ReturnOutcome: step.Succeeded(step.RestoreImage)}
}

func (f *FakeImageRestorer) Restore(p plan.Plan) step.Outcome {
	f.RestorePlans = append(f.RestorePlans, p)
	return f.ReturnOutcome
}

type FakeBootLoaderRepairer struct {
	RepairPlans   []plan.Plan
	ReturnOutcome step.Outcome
}

func NewFakeBootLoaderRepairer() *FakeBootLoaderRepairer {
	return &FakeBootLoaderRepairer{ReturnOutcome: step.Succeeded(step.RepairBootLoader)}
}

func (f *FakeBootLoaderRepairer) Repair(p plan.Plan) step.Outcome {
	f.RepairPlans = append(f.RepairPlans, p)
	return f.ReturnOutcome
}

type FakePayloadCopier struct {
	CopyPlans     []plan.Plan
	ReturnOutcome step.Outcome
}

func NewFakePayloadCopier() *FakePayloadCopier {
	return &FakePayloadCopier{ReturnOutcome: step.Succeeded(step.CopyPayload)}
}

func (f *FakePayloadCopier) Copy(p plan.Plan) step.Outcome {
	f.CopyPlans = append(f.CopyPlans, p)
	return f.ReturnOutcome
}
