package main

import (
	"errors"
	"fmt"
	"os"
)

const cliToolVersion = "graphite-cli 0.1.0-dev"

var errManifestNotFound = errors.New("graphite.yml not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  graphite run [target]")
	fmt.Fprintln(os.Stderr, "  graphite run <file.grf.json>")
	fmt.Fprintln(os.Stderr, "  graphite <file.grf.json>")
	fmt.Fprintln(os.Stderr, "  graphite deps install")
	fmt.Fprintln(os.Stderr, "  graphite deps update [dependency ...]")
}
