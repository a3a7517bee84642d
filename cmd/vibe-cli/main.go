package main

import (
	"os"

	"github.com/PabloGalante/vibe-agent/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(cli.DefaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}
