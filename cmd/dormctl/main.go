package main

import (
	"os"

	"dormctl/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
