package main

import (
	"os"

	"github.com/spigell/eb1a-intake/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
