package main

import (
	"os"

	"github.com/rustyeddy/betledger/cmd/betledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
