package main

import (
	"os"

	"github.com/equal-orm/equal/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
