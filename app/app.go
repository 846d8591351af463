// Package app wires the real collaborators together: the OS filesystem and
// command runner, the powershell disk inventory, the diskpart executor and
// the orchestrator built on top of them.
package app

import (
	"code.cloudfoundry.org/clock"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	boshuuid "github.com/cloudfoundry/bosh-utils/uuid"

	"github.com/cloudfoundry/disk-provisioner/disk"
	"github.com/cloudfoundry/disk-provisioner/diskpart"
	"github.com/cloudfoundry/disk-provisioner/gpt"
	"github.com/cloudfoundry/disk-provisioner/imaging"
	"github.com/cloudfoundry/disk-provisioner/orchestrator"
	"github.com/cloudfoundry/disk-provisioner/partition"
	"github.com/cloudfoundry/disk-provisioner/plan"
)

type App struct {
	logger boshlog.Logger
	logTag string
	fs     boshsys.FileSystem

	config       Config
	inventory    disk.Manager
	orchestrator *orchestrator.Orchestrator
}

func New(logger boshlog.Logger) *App {
	return &App{
		logger: logger,
		logTag: "App",
		fs:     boshsys.NewOsFileSystem(logger),
	}
}

// Setup loads the config and builds the provisioning pipeline. A positive
// timeoutSeconds overrides the configured diskpart timeout.
func (a *App) Setup(configPath string, timeoutSeconds int) error {
	config, err := LoadConfigFromPath(a.fs, configPath)
	if err != nil {
		return bosherr.WrapError(err, "Loading config")
	}
	if timeoutSeconds > 0 {
		config.DiskpartTimeoutSeconds = timeoutSeconds
	}
	a.config = config

	runner := boshsys.NewExecCmdRunner(a.logger)
	timeService := clock.NewClock()
	timeout := config.DiskpartTimeout()

	a.inventory = disk.NewPowershellManager(runner, a.logger)

	executor := diskpart.NewScriptExecutor(a.fs, runner, timeService, a.logger)
	initializer := gpt.NewInitializer(executor, a.inventory, timeout, a.logger)
	creator := partition.NewCreator(executor, a.inventory, timeout, a.logger)

	restorer := imaging.NewRestorer(
		a.fs, runner, timeService,
		config.GhostPath, config.ImagePath, imaging.RestoreTimeout,
		a.logger,
	)
	bootRepairer := imaging.NewBootRepairer(
		a.fs, runner, timeService,
		config.BCDBootPath, imaging.BootRepairTimeout,
		a.logger,
	)
	payloadCopier := imaging.NewPayloadCopier(a.fs, config.PayloadPath, a.logger)

	a.orchestrator = orchestrator.NewOrchestrator(
		disk.NewWindowsPrivilegeChecker(runner),
		a.inventory,
		initializer,
		creator,
		restorer,
		bootRepairer,
		payloadCopier,
		boshuuid.NewGenerator(),
		config.ProtectedDiskNames,
		a.logger,
	)

	return nil
}

func (a *App) Provision(p plan.Plan, opts orchestrator.Options) (orchestrator.RunResult, error) {
	return a.orchestrator.Run(p, opts)
}

func (a *App) ListDisks() ([]disk.Descriptor, error) {
	return a.inventory.GetDisks()
}

func (a *App) Config() Config {
	return a.config
}
