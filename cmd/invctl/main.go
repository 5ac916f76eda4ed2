package main

import (
	"os"

	"github.com/mvaldes/invctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
