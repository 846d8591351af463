package plan_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/disk-provisioner/plan"
)

var _ = Describe("ParseArgs", func() {
	It("builds a plan from six positional values", func() {
		p, err := plan.ParseArgs([]string{"1", "300", "102400", "e", "f", "g"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(plan.Plan{
			DiskIndex:      1,
			EFISizeMB:      300,
			PrimarySizeMB:  102400,
			LetterPrimary1: "E",
			LetterPrimary2: "F",
			LetterEFI:      "G",
		}))
	})

	It("upcases and trims the drive letters", func() {
		p, err := plan.ParseArgs([]string{"0", "300", "1024", " e ", "f", "G"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Letters()).To(Equal([]string{"E", "F", "G"}))
	})

	It("rejects the wrong number of arguments", func() {
		_, err := plan.ParseArgs([]string{"1", "300", "102400", "E", "F"})
		Expect(err).To(HaveOccurred())

		validationErr, ok := err.(plan.ValidationError)
		Expect(ok).To(BeTrue())
		Expect(validationErr.Reason).To(Equal(plan.ReasonInvalidParameter))
	})

	It("rejects a non-numeric disk index", func() {
		_, err := plan.ParseArgs([]string{"one", "300", "102400", "E", "F", "G"})
		Expect(err).To(MatchError(`InvalidParameter: disk index "one" is not a number`))
	})

	It("rejects non-numeric sizes", func() {
		_, err := plan.ParseArgs([]string{"1", "lots", "102400", "E", "F", "G"})
		Expect(err).To(MatchError(`InvalidParameter: EFI size "lots" is not a number`))

		_, err = plan.ParseArgs([]string{"1", "300", "many", "E", "F", "G"})
		Expect(err).To(MatchError(`InvalidParameter: primary size "many" is not a number`))
	})
})

var _ = Describe("Plan", func() {
	Describe("SecondarySizeMB", func() {
		It("splits the remaining capacity in half", func() {
			p := plan.Plan{EFISizeMB: 300, PrimarySizeMB: 1000}
			Expect(p.SecondarySizeMB(2300)).To(Equal(500))
		})

		It("truncates an odd remainder", func() {
			p := plan.Plan{EFISizeMB: 300, PrimarySizeMB: 1000}
			Expect(p.SecondarySizeMB(2301)).To(Equal(500))
		})

		It("never goes negative", func() {
			p := plan.Plan{EFISizeMB: 300, PrimarySizeMB: 1000}
			Expect(p.SecondarySizeMB(100)).To(Equal(0))
		})
	})
})
