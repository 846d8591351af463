package orchestrator_test

import (
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	fakeuuid "github.com/cloudfoundry/bosh-utils/uuid/fakes"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/disk-provisioner/disk"
	diskfakes "github.com/cloudfoundry/disk-provisioner/disk/fakes"
	"github.com/cloudfoundry/disk-provisioner/gpt"
	"github.com/cloudfoundry/disk-provisioner/orchestrator"
	"github.com/cloudfoundry/disk-provisioner/orchestrator/fakes"
	"github.com/cloudfoundry/disk-provisioner/partition"
	"github.com/cloudfoundry/disk-provisioner/plan"
	"github.com/cloudfoundry/disk-provisioner/step"
)

var _ = Describe("Orchestrator", func() {
	var (
		privilege     *diskfakes.FakePrivilegeChecker
		inventory     *diskfakes.FakeManager
		initializer   *fakes.FakeGPTInitializer
		creator       *fakes.FakePartitionCreator
		restorer      *fakes.FakeImageRestorer
		bootRepairer  *fakes.FakeBootLoaderRepairer
		payloadCopier *fakes.FakePayloadCopier
		uuidGen       *fakeuuid.FakeGenerator

		subject *orchestrator.Orchestrator
		p       plan.Plan
	)

	newOrchestrator := func(protectedNames []string) *orchestrator.Orchestrator {
		return orchestrator.NewOrchestrator(
			privilege,
			inventory,
			initializer,
			creator,
			restorer,
			bootRepairer,
			payloadCopier,
			uuidGen,
			protectedNames,
			boshlog.NewLogger(boshlog.LevelNone),
		)
	}

	BeforeEach(func() {
		privilege = &diskfakes.FakePrivilegeChecker{Elevated: true}
		inventory = diskfakes.NewFakeManager()
		initializer = fakes.NewFakeGPTInitializer()
		creator = fakes.NewFakePartitionCreator()
		restorer = fakes.NewFakeImageRestorer()
		bootRepairer = fakes.NewFakeBootLoaderRepairer()
		payloadCopier = fakes.NewFakePayloadCopier()
		uuidGen = &fakeuuid.FakeGenerator{GeneratedUUID: "run-uuid-1"}

		p = plan.Plan{
			DiskIndex:      1,
			EFISizeMB:      300,
			PrimarySizeMB:  1000,
			LetterPrimary1: "E",
			LetterPrimary2: "F",
			LetterEFI:      "G",
		}
		inventory.Descriptors[1] = disk.Descriptor{
			Index:         1,
			Name:          "Samsung SSD 870",
			CapacityBytes: 500 * 1024 * 1024 * 1024,
		}

		subject = newOrchestrator(nil)
	})

	It("runs the full sequence and reports success", func() {
		result, err := subject.Run(p, orchestrator.Options{})
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Success).To(BeTrue())
		Expect(result.RunID).To(Equal("run-uuid-1"))
		Expect(result.FailedAt).To(BeEmpty())
		Expect(initializer.InitializePlans).To(Equal([]plan.Plan{p}))
		Expect(creator.CreatePlans).To(Equal([]plan.Plan{p}))
		Expect(restorer.RestorePlans).To(BeEmpty())
		Expect(bootRepairer.RepairPlans).To(BeEmpty())
	})

	It("runs the imaging stages when asked to", func() {
		result, err := subject.Run(p, orchestrator.Options{
			RestoreImage:     true,
			RepairBootLoader: true,
			CopyPayload:      true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeTrue())

		Expect(restorer.RestorePlans).To(Equal([]plan.Plan{p}))
		Expect(bootRepairer.RepairPlans).To(Equal([]plan.Plan{p}))
		Expect(payloadCopier.CopyPlans).To(Equal([]plan.Plan{p}))
	})

	Context("when the caller is not elevated", func() {
		BeforeEach(func() {
			privilege.Elevated = false
		})

		It("stops before touching the disk", func() {
			result, err := subject.Run(p, orchestrator.Options{})
			Expect(err).To(Equal(orchestrator.PrivilegeError{}))

			Expect(result.Success).To(BeFalse())
			Expect(result.FailedAt).To(Equal(orchestrator.StagePrivilegeCheck))
			Expect(inventory.GetDiskIndexes).To(BeEmpty())
			Expect(initializer.InitializePlans).To(BeEmpty())
			Expect(creator.CreatePlans).To(BeEmpty())
		})
	})

	Context("when the disk does not exist", func() {
		It("fails the lookup stage", func() {
			p.DiskIndex = 9

			result, err := subject.Run(p, orchestrator.Options{})
			Expect(err).To(MatchError(disk.NotFoundError{Index: 9}))
			Expect(result.FailedAt).To(Equal(orchestrator.StageDiskLookup))
			Expect(initializer.InitializePlans).To(BeEmpty())
		})
	})

	Context("when the disk is protected", func() {
		BeforeEach(func() {
			subject = newOrchestrator([]string{"Samsung SSD 870"})
		})

		It("refuses to provision it", func() {
			result, err := subject.Run(p, orchestrator.Options{})
			Expect(err).To(Equal(orchestrator.ProtectedDiskError{
				Index: 1,
				Name:  "Samsung SSD 870",
			}))
			Expect(result.FailedAt).To(Equal(orchestrator.StageDiskLookup))
			Expect(initializer.InitializePlans).To(BeEmpty())
		})
	})

	Context("when the plan does not validate", func() {
		BeforeEach(func() {
			p.LetterPrimary1 = "C"
		})

		It("fails validation without touching the disk", func() {
			result, err := subject.Run(p, orchestrator.Options{})
			Expect(err).To(HaveOccurred())

			validationErr, ok := err.(plan.ValidationError)
			Expect(ok).To(BeTrue())
			Expect(validationErr.Reason).To(Equal(plan.ReasonReservedLetter))

			Expect(result.FailedAt).To(Equal(orchestrator.StageValidation))
			Expect(initializer.InitializePlans).To(BeEmpty())
			Expect(creator.CreatePlans).To(BeEmpty())
		})
	})

	Context("when GPT initialization fails", func() {
		BeforeEach(func() {
			initializer.ReturnState = gpt.StateFailed
			initializer.ReturnOutcomes = []step.Outcome{
				step.Succeeded(step.SelectDisk),
				step.Failed(step.Clean, "Access is denied"),
			}
		})

		It("records the step outcomes and never reaches partition creation", func() {
			result, err := subject.Run(p, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Success).To(BeFalse())
			Expect(result.FailedAt).To(Equal("Cleaning"))
			Expect(result.Detail).To(ContainSubstring("Access is denied"))
			Expect(result.Steps).To(HaveLen(2))
			Expect(creator.CreatePlans).To(BeEmpty())
		})
	})

	Context("when partition creation fails", func() {
		BeforeEach(func() {
			creator.ReturnState = partition.StateFailed
			creator.ReturnOutcomes = []step.Outcome{
				step.VerificationFailed(step.AssignLetter1, "letter E bound to partition 1", "letters []"),
			}
		})

		It("reports the failed stage and skips the imaging stages", func() {
			result, err := subject.Run(p, orchestrator.Options{RestoreImage: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Success).To(BeFalse())
			Expect(result.FailedAt).To(Equal("AssigningLetter1"))
			Expect(restorer.RestorePlans).To(BeEmpty())
		})
	})

	Context("when the image restore fails", func() {
		BeforeEach(func() {
			restorer.ReturnOutcome = step.Failed(step.RestoreImage, "Ghost exited with status 1")
		})

		It("stops before repairing the boot loader", func() {
			result, err := subject.Run(p, orchestrator.Options{
				RestoreImage:     true,
				RepairBootLoader: true,
				CopyPayload:      true,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Success).To(BeFalse())
			Expect(result.FailedAt).To(Equal("RestoringImage"))
			Expect(bootRepairer.RepairPlans).To(BeEmpty())
			Expect(payloadCopier.CopyPlans).To(BeEmpty())
		})
	})

	Context("when the payload copy fails", func() {
		BeforeEach(func() {
			payloadCopier.ReturnOutcome = step.Failed(step.CopyPayload, "out of space")
		})

		It("reports the failing step", func() {
			result, err := subject.Run(p, orchestrator.Options{CopyPayload: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Success).To(BeFalse())
			Expect(result.FailedAt).To(Equal("CopyingPayload"))
			Expect(result.Detail).To(ContainSubstring("out of space"))
		})
	})

	It("refuses a second run while the disk is still claimed", func() {
		started := make(chan struct{})
		release := make(chan struct{})
		initializer.InitializeCallBack = func(plan.Plan) {
			close(started)
			<-release
		}

		firstResults := make(chan orchestrator.RunResult, 1)
		go func() {
			defer GinkgoRecover()
			result, err := subject.Run(p, orchestrator.Options{})
			Expect(err).NotTo(HaveOccurred())
			firstResults <- result
		}()

		<-started
		_, err := subject.Run(p, orchestrator.Options{})
		Expect(err).To(Equal(orchestrator.BusyDiskError{Index: 1}))

		close(release)
		Expect((<-firstResults).Success).To(BeTrue())

		// claim released once the first run finished
		initializer.InitializeCallBack = nil
		result, err := subject.Run(p, orchestrator.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeTrue())
	})

	It("collects step outcomes from every stage in execution order", func() {
		result, err := subject.Run(p, orchestrator.Options{
			RestoreImage:     true,
			RepairBootLoader: true,
			CopyPayload:      true,
		})
		Expect(err).NotTo(HaveOccurred())

		var names []step.Name
		for _, outcome := range result.Steps {
			names = append(names, outcome.Name)
		}
		Expect(names).To(Equal([]step.Name{
			step.VerifyGPT,
			step.VerifyPartitions,
			step.RestoreImage,
			step.RepairBootLoader,
			step.CopyPayload,
		}))
	})
})
