package main

import (
	"os"

	"github.com/leengari/memstore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
