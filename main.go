package main

import "github.com/go-nachos/kernel/cmd"

func main() {
	cmd.Execute()
}
