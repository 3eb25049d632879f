package main

import (
	"os"

	"github.com/evdnx/gocompass/cmd/compass/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
