package main

import (
	"os"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
