package main

import (
	"os"

	"github.com/hupe1980/bayespart/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
