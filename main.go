package main

import (
	"os"

	"github.com/conneroisu/liquify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
