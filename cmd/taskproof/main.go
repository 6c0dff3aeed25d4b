package main

import (
	"os"

	"github.com/fastygo/taskproof/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
