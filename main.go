package main

import (
	"os"

	"github.com/abhisek/calcmaster/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
