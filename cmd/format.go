package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-nachos/kernel/internal/config"
	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/fs"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Lay down a fresh file system on the configured disk image",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		dev, err := device.CreateFileDevice(GetDiskPath(), cfg.NumSectors)
		if err != nil {
			return fmt.Errorf("creating disk image: %w", err)
		}
		defer dev.Close()

		if _, err := fs.Format(dev); err != nil {
			return fmt.Errorf("formatting: %w", err)
		}

		if !GetQuiet() {
			fmt.Printf("formatted %s: %d sectors of %d bytes\n", GetDiskPath(), cfg.NumSectors, cfg.SectorSize)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
