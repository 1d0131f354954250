package main

import (
	"os"

	"github.com/KruASe76/look/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
