package main

import (
	"os"

	"github.com/rshade/parceltrack/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func run() error {
	return cli.NewRootCmd(version).Execute()
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}
