package main

import (
	"os"

	"knucklebone/cli"
)

func main() {
	if err := cli.NewCLI().Run(); err != nil {
		os.Exit(1)
	}
}
