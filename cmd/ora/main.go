// Package main provides ora, a loop/artefact document engine over a directory
// of markdown files.
package main

import (
	"os"

	"ora/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, os.Environ()))
}
