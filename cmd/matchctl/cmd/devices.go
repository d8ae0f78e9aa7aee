package cmd

import (
	"context"
	"fmt"

	"github.com/approxmatch/hostctl/pkg/transport"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List FTDI adapters that can host the accelerator's SPI bus",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cobraCmd *cobra.Command, args []string) error {
	adapters, err := transport.DiscoverAdapters(context.Background())
	if err != nil {
		return fmt.Errorf("matchctl: devices: %w", err)
	}
	if len(adapters) == 0 {
		fmt.Println("no FTDI adapters found")
		return nil
	}
	for _, a := range adapters {
		fmt.Printf("%s (%04X:%04X)\n", a.Label(), a.VendorID, a.ProductID)
	}
	return nil
}
