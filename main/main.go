package main

import (
	"os"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	"github.com/spf13/cobra"

	boshapp "github.com/cloudfoundry/disk-provisioner/app"
)

const mainLogTag = "main"

var (
	configPath     string
	timeoutSeconds int
)

func main() {
	logLevel := boshlog.LevelError
	if os.Getenv("DISK_PROVISIONER_DEBUG") != "" {
		logLevel = boshlog.LevelDebug
	}

	logger := boshlog.NewLogger(logLevel)
	defer logger.HandlePanic("Main")

	app := boshapp.New(logger)

	root := &cobra.Command{
		Use:           "disk-provisioner",
		Short:         "Provision GPT disks on Windows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 0, "diskpart timeout in seconds (overrides config)")

	root.AddCommand(newProvisionCommand(app))
	root.AddCommand(newDisksCommand(app))

	if err := root.Execute(); err != nil {
		logger.Error(mainLogTag, "%s", err.Error())
		os.Exit(1)
	}
}
