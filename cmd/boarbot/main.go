package main

import (
	"os"

	"boarbot/cmd/boarbot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
