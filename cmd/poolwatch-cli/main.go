package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samijaber1/poolwatch/internal/config"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateFile := validateCmd.String("file", "", "config YAML file to validate")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *validateFile == "" {
			fmt.Fprintln(os.Stderr, "Error: --file flag is required")
			validateCmd.Usage()
			os.Exit(1)
		}
		os.Exit(runValidate(*validateFile))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: poolwatch-cli <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate --file <path>    Validate a poolwatch config YAML file")
	fmt.Println()
}

func runValidate(path string) int {
	schemaPath := findSchemaFile()
	if schemaPath == "" {
		fmt.Fprintln(os.Stderr, "Error: could not find schemas/watch_v1.json")
		return 1
	}

	validator, err := config.NewValidator(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
		return 1
	}

	errors := validator.ValidateFile(path)
	if len(errors) == 0 {
		fmt.Println("✓ Config file is valid")
		return 0
	}

	fmt.Fprintf(os.Stderr, "✗ Validation failed with %d error(s):\n\n", len(errors))
	for _, err := range errors {
		if err.Path != "" {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", filepath.Base(err.File), err.Path, err.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(err.File), err.Message)
		}
	}

	return 1
}

// findSchemaFile looks for the schema file in common locations.
func findSchemaFile() string {
	candidates := []string{
		"schemas/watch_v1.json",
		"../schemas/watch_v1.json",
		"../../schemas/watch_v1.json",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
