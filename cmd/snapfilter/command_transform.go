package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shibukawa/snapfilter/transform"
)

// TransformCmd represents the transform command
type TransformCmd struct {
	Script string   `short:"s" help:"CEL script file, or a script name from transform.scripts in the config"`
	Record []string `short:"r" sep:"none" help:"Record field as key=value (repeatable)"`
	Input  bool     `short:"i" help:"Read the record as a JSON object from stdin"`
}

// Run executes the transform command
func (cmd *TransformCmd) Run(ctx *Context) error {
	if cmd.Script == "" {
		return ErrScriptRequired
	}

	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	path := cmd.Script
	if configured, ok := config.Transform.Scripts[cmd.Script]; ok {
		path = configured
	}

	if !fileExists(path) {
		return fmt.Errorf("%w: %s", ErrInputFileNotExist, path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	if ctx.Verbose {
		ctx.Info("Compiling script: %s", path)
	}

	program, err := transform.Compile(string(source))
	if err != nil {
		return err
	}

	record, err := cmd.buildRecord(ctx)
	if err != nil {
		return err
	}

	result, err := program.Run(record)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(ctx.Stdout)
	encoder.SetEscapeHTML(false)

	return encoder.Encode(result)
}

// buildRecord merges the stdin JSON record (if requested) with --record fields
func (cmd *TransformCmd) buildRecord(ctx *Context) (map[string]string, error) {
	record := make(map[string]string)

	if cmd.Input {
		if err := json.NewDecoder(ctx.Stdin).Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
	}

	for _, field := range cmd.Record {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidRecord, field)
		}

		record[key] = value
	}

	return record, nil
}
