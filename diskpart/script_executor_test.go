package diskpart_test

import (
	"errors"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/disk-provisioner/diskpart"
)

var _ = Describe("ScriptExecutor", func() {
	const scriptPath = "/tmp/diskpart-script-abc123"

	var (
		fs          *fakesys.FakeFileSystem
		cmdRunner   *fakesys.FakeCmdRunner
		timeService *fakeclock.FakeClock
		executor    *diskpart.ScriptExecutor
		script      diskpart.Script
		scriptFile  *fakesys.FakeFile
	)

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
		cmdRunner = fakesys.NewFakeCmdRunner()
		timeService = fakeclock.NewFakeClock(time.Now())
		executor = diskpart.NewScriptExecutor(fs, cmdRunner, timeService, boshlog.NewLogger(boshlog.LevelNone))

		script = diskpart.NewScript("select disk 1", "clean")

		scriptFile = fakesys.NewFakeFile(scriptPath, fs)
		fs.ReturnTempFile = scriptFile
	})

	It("writes the script to a temp file and runs diskpart against it", func() {
		cmdRunner.AddProcess("diskpart.exe /s "+scriptPath, &fakesys.FakeProcess{
			WaitResult: boshsys.Result{Stdout: "DiskPart succeeded.", ExitStatus: 0},
		})

		result, err := executor.Run(script, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Succeeded()).To(BeTrue())
		Expect(result.Stdout).To(Equal("DiskPart succeeded."))

		Expect(cmdRunner.RunComplexCommands).To(Equal([]boshsys.Command{{
			Name: "diskpart.exe",
			Args: []string{"/s", scriptPath},
		}}))
	})

	It("returns the exit status of a failed script without an error", func() {
		cmdRunner.AddProcess("diskpart.exe /s "+scriptPath, &fakesys.FakeProcess{
			WaitResult: boshsys.Result{
				Stdout:     "Virtual Disk Service error",
				ExitStatus: 1,
				Error:      errors.New("exit status 1"),
			},
		})

		result, err := executor.Run(script, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Succeeded()).To(BeFalse())
		Expect(result.Output()).To(ContainSubstring("Virtual Disk Service error"))
	})

	It("wraps the error when diskpart cannot be started", func() {
		cmdRunner.AddProcess("diskpart.exe /s "+scriptPath, &fakesys.FakeProcess{
			WaitResult: boshsys.Result{
				ExitStatus: -1,
				Error:      errors.New("file does not exist"),
			},
		})

		_, err := executor.Run(script, time.Minute)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Running diskpart"))
		Expect(err.Error()).To(ContainSubstring("file does not exist"))
	})

	It("terminates diskpart and reports a timeout when it runs too long", func() {
		process := &fakesys.FakeProcess{
			TerminatedNicelyCallBack: func(p *fakesys.FakeProcess) {
				p.WaitCh <- boshsys.Result{
					ExitStatus: 1,
					Error:      errors.New("signal: terminated"),
				}
			},
		}
		cmdRunner.AddProcess("diskpart.exe /s "+scriptPath, process)

		go timeService.WaitForWatcherAndIncrement(time.Minute)

		_, err := executor.Run(script, time.Minute)
		Expect(err).To(Equal(diskpart.TimeoutError{Timeout: time.Minute}))
		Expect(process.TerminateNicelyKillGracePeriod).To(Equal(5 * time.Second))
	})

	It("errors when the temp file cannot be created", func() {
		fs.TempFileError = errors.New("disk full")

		_, err := executor.Run(script, time.Minute)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Creating diskpart script file"))
	})

	It("errors when the script cannot be written", func() {
		scriptFile.WriteErr = errors.New("no space")

		_, err := executor.Run(script, time.Minute)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Writing diskpart script file"))
	})

	It("errors when the script file cannot be closed", func() {
		scriptFile.CloseErr = errors.New("boom")

		_, err := executor.Run(script, time.Minute)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Closing diskpart script file"))
	})
})
