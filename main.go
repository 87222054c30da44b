package main

import (
	"os"

	"ghsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
