package main

import (
	"os"

	"github.com/palmguru/palmguru/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
