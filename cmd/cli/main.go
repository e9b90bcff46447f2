package main

import (
	"os"

	"github.com/pakproperty/pakproperty/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
