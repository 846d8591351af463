package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	boshapp "github.com/cloudfoundry/disk-provisioner/app"
	"github.com/cloudfoundry/disk-provisioner/orchestrator"
	"github.com/cloudfoundry/disk-provisioner/plan"
)

func newProvisionCommand(app *boshapp.App) *cobra.Command {
	var (
		assumeYes    bool
		restoreImage bool
		repairBoot   bool
		copyPayload  bool
	)

	cmd := &cobra.Command{
		Use:   "provision <disk> <efi-mb> <primary-mb> <letter1> <letter2> <efi-letter>",
		Short: "Wipe a disk, convert it to GPT and create the partition layout",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.ParseArgs(args)
			if err != nil {
				return err
			}

			if err := app.Setup(configPath, timeoutSeconds); err != nil {
				return err
			}

			if !assumeYes {
				ok, err := confirmWipe(p)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(os.Stderr, "Aborted.")
					os.Exit(2)
				}
			}

			result, err := app.Provision(p, orchestrator.Options{
				RestoreImage:     restoreImage,
				RepairBootLoader: repairBoot,
				CopyPayload:      copyPayload,
			})

			printResult(result)

			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("provisioning failed at %s: %s", result.FailedAt, result.Detail)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, "skip the destructive-operation prompt")
	cmd.Flags().BoolVar(&restoreImage, "restore-image", false, "restore the configured OS image after partitioning")
	cmd.Flags().BoolVar(&repairBoot, "repair-boot", false, "rebuild UEFI boot files after partitioning")
	cmd.Flags().BoolVar(&copyPayload, "copy-payload", false, "copy the configured payload folder onto the data partition")

	return cmd
}

func confirmWipe(p plan.Plan) (bool, error) {
	color.New(color.FgRed, color.Bold).Fprintf(
		os.Stderr,
		"All data on disk %d will be destroyed.\n",
		p.DiskIndex,
	)

	confirmed := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Provision disk %d with %s?", p.DiskIndex, p.String()),
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}

func printResult(result orchestrator.RunResult) {
	for _, outcome := range result.Steps {
		if outcome.Ok() {
			color.Green("  ok   %s", outcome.Name)
		} else {
			color.Red("  FAIL %s", outcome.Summary())
		}
	}

	if result.Success {
		color.Green("Disk %d provisioned (run %s)", result.DiskIndex, result.RunID)
	} else {
		color.Red("Disk %d failed at %s (run %s)", result.DiskIndex, result.FailedAt, result.RunID)
	}
}
