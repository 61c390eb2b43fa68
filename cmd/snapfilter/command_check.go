package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/shibukawa/snapfilter"
)

// CheckCmd represents the check command
type CheckCmd struct {
	Expr string `arg:"" optional:"" help:"Filter expression (default: stdin)"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	source, err := readInput(ctx, cmd.Expr)
	if err != nil {
		return err
	}

	node, err := snapfilter.CompileTree(source)
	if err != nil {
		var compileErr *snapfilter.CompileError
		if !errors.As(err, &compileErr) {
			return err
		}

		printDiagnostic(ctx, compileErr, config.Diagnostics.ShowContext())

		return ErrCheckFailed
	}

	if ctx.Verbose {
		ctx.Info("Fields: %v", fieldList(node))
	}

	ctx.Success("OK")

	return nil
}

// printDiagnostic writes a compile error with the offending source line
func printDiagnostic(ctx *Context, compileErr *snapfilter.CompileError, showContext bool) {
	header := color.New(color.Bold, color.FgRed)
	marker := color.New(color.Bold, color.FgYellow)

	header.Fprintf(ctx.Stderr, "%s: ", compileErr.Position())
	fmt.Fprintln(ctx.Stderr, compileErr.Error())

	if !showContext {
		return
	}

	line := compileErr.SourceLine()
	if line == "" && compileErr.Fragment == "" {
		return
	}

	fmt.Fprintln(ctx.Stderr)
	fmt.Fprintln(ctx.Stderr, line)
	marker.Fprintln(ctx.Stderr, compileErr.Marker())
}
