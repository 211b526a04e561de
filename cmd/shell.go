package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-nachos/kernel/internal/config"
	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/fs"
	"github.com/go-nachos/kernel/internal/kernel"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive REPL over the file system syscall surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		dev, err := device.OpenFileDevice(GetDiskPath())
		if err != nil {
			return fmt.Errorf("opening disk image (run `nachos format` first): %w", err)
		}
		defer dev.Close()

		kctx := kernel.New(dev, fs.Mount(dev), os.Stderr, os.Stdout)
		runShell(kctx, os.Stdin, os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(kctx *kernel.Context, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "nachos> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			runShellCommand(kctx, line, out)
		}
		fmt.Fprint(out, "nachos> ")
	}
}

func runShellCommand(kctx *kernel.Context, line string, out *os.File) {
	fields := strings.Fields(line)
	cmdName, rest := fields[0], fields[1:]

	switch cmdName {
	case "mkdir":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: mkdir <path>")
			return
		}
		if err := kctx.FS.Create(rest[0], 0, true); err != nil {
			fmt.Fprintln(out, "error:", err)
		}

	case "create":
		if len(rest) != 2 {
			fmt.Fprintln(out, "usage: create <path> <size>")
			return
		}
		size, err := strconv.Atoi(rest[1])
		if err != nil {
			fmt.Fprintln(out, "error: bad size:", err)
			return
		}
		if !kctx.Create(rest[0], size) {
			fmt.Fprintln(out, "error: create failed")
		}

	case "open":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: open <path>")
			return
		}
		fd := kctx.Open(rest[0])
		if fd == 0 {
			fmt.Fprintln(out, "error: open failed")
			return
		}
		fmt.Fprintln(out, "fd:", fd)

	case "write":
		if len(rest) < 2 {
			fmt.Fprintln(out, "usage: write <fd> <text>")
			return
		}
		fd, err := strconv.Atoi(rest[0])
		if err != nil {
			fmt.Fprintln(out, "error: bad fd:", err)
			return
		}
		text := strings.Join(rest[1:], " ")
		buf := []byte(text)
		if n := kctx.Write(buf, len(buf), fd); n < 0 {
			fmt.Fprintln(out, "error: write failed")
		}

	case "read":
		if len(rest) != 2 {
			fmt.Fprintln(out, "usage: read <fd> <n>")
			return
		}
		fd, err := strconv.Atoi(rest[0])
		if err != nil {
			fmt.Fprintln(out, "error: bad fd:", err)
			return
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			fmt.Fprintln(out, "error: bad n:", err)
			return
		}
		buf := make([]byte, n)
		got := kctx.Read(buf, n, fd)
		if got < 0 {
			fmt.Fprintln(out, "error: read failed")
			return
		}
		fmt.Fprintln(out, string(buf[:got]))

	case "close":
		if len(rest) != 1 {
			fmt.Fprintln(out, "usage: close <fd>")
			return
		}
		fd, err := strconv.Atoi(rest[0])
		if err != nil {
			fmt.Fprintln(out, "error: bad fd:", err)
			return
		}
		if kctx.Close(fd) < 0 {
			fmt.Fprintln(out, "error: close failed")
		}

	case "rm":
		recursive := false
		path := ""
		for _, a := range rest {
			if a == "-r" {
				recursive = true
			} else {
				path = a
			}
		}
		if path == "" {
			fmt.Fprintln(out, "usage: rm [-r] <path>")
			return
		}
		if err := kctx.FS.Remove(path, recursive); err != nil {
			fmt.Fprintln(out, "error:", err)
		}

	case "ls":
		recursive := false
		path := "/"
		for _, a := range rest {
			if a == "-r" {
				recursive = true
			} else {
				path = a
			}
		}
		names, err := kctx.FS.List(path, recursive)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			return
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}

	case "print":
		s, err := kctx.FS.Print()
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			return
		}
		fmt.Fprint(out, s)

	case "exit", "quit":
		os.Exit(0)

	default:
		fmt.Fprintln(out, "unknown command:", cmdName)
	}
}
