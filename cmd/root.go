package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	diskPath string
)

var rootCmd = &cobra.Command{
	Use:   "nachos",
	Short: "A pedagogical kernel core: multi-level feedback scheduler and sector file system",
	Long: `nachos drives the scheduler and file system core of a small teaching
kernel against a disk image file.

Commands:
  format    Lay down a fresh file system on a disk image
  shell     Interactive REPL over the file system syscall surface
  sched     Run a scripted scheduler trace and print its log`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVar(&diskPath, "disk", "nachos.disk", "path to the disk image file")
}

// GetVerbose returns the verbose flag value.
func GetVerbose() bool { return verbose }

// GetQuiet returns the quiet flag value.
func GetQuiet() bool { return quiet }

// GetDiskPath returns the configured disk image path.
func GetDiskPath() string { return diskPath }
