package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	boshapp "github.com/cloudfoundry/disk-provisioner/app"
)

const bytesPerGB = 1024 * 1024 * 1024

func newDisksCommand(app *boshapp.App) *cobra.Command {
	return &cobra.Command{
		Use:   "disks",
		Short: "List the disks visible to the system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Setup(configPath, timeoutSeconds); err != nil {
				return err
			}

			disks, err := app.ListDisks()
			if err != nil {
				return err
			}

			protected := map[string]struct{}{}
			for _, name := range app.Config().ProtectedDiskNames {
				protected[name] = struct{}{}
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Index", "Name", "Capacity", "Style", "Letters", "Protected"})

			for _, d := range disks {
				flag := ""
				if _, ok := protected[d.Name]; ok {
					flag = "yes"
				}
				table.Append([]string{
					strconv.Itoa(d.Index),
					d.Name,
					fmt.Sprintf("%.1f GB", float64(d.CapacityBytes)/bytesPerGB),
					d.PartitionStyle,
					strings.Join(d.ExistingLetters, " "),
					flag,
				})
			}

			table.Render()
			return nil
		},
	}
}
