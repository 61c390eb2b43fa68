package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// readInput returns arg, or stdin when arg is empty or "-". One trailing
// line break is dropped so piped input compiles the same as an argument.
func readInput(ctx *Context, arg string) (string, error) {
	if arg != "" && arg != "-" {
		return arg, nil
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	text = strings.TrimSuffix(text, "\r")

	return text, nil
}

// writeOutput writes data to path, or to stdout when path is empty
func writeOutput(ctx *Context, path string, data []byte) error {
	if path == "" {
		_, err := ctx.Stdout.Write(data)
		return err
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}

	return nil
}

// ensureDir creates a directory if it doesn't exist
func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	return nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
