package main

import (
	"os"

	"github.com/creditlab/riskband/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
