// Package main is the entry point for cacctl, a small command-line client
// for the CAC config-publishing protocol. It exists to exercise the
// pkg/cacclient library end to end, not as a production bootstrap target.
package main

import (
	"fmt"
	"os"

	"github.com/vitaliisemenov/cac/cmd/cacctl/cmd"
)

const (
	serviceName    = "cacctl"
	serviceVersion = "0.1.0"
)

func main() {
	if err := cmd.NewRootCommand(serviceName, serviceVersion).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
