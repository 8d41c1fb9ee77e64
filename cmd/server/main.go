package main

import (
	"os"

	"shieldboard/cmd/server/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
