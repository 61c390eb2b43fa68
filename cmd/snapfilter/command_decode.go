package main

import (
	"fmt"

	"github.com/shibukawa/snapfilter"
)

// DecodeCmd represents the decode command
type DecodeCmd struct {
	Tree   string `arg:"" optional:"" help:"Serialized filter tree JSON (default: stdin)"`
	Format string `short:"f" help:"Re-encode the tree in this format instead of printing an expression"`
	Indent int    `help:"Indent width for json and yaml output" default:"0"`
}

// Run executes the decode command
func (cmd *DecodeCmd) Run(ctx *Context) error {
	input, err := readInput(ctx, cmd.Tree)
	if err != nil {
		return err
	}

	node, err := snapfilter.Decode(input)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		ctx.Info("Fields: %s", fieldList(node))
	}

	if cmd.Format != "" {
		data, err := render(node, cmd.Format, cmd.Indent)
		if err != nil {
			return err
		}

		_, err = ctx.Stdout.Write(data)

		return err
	}

	_, err = fmt.Fprintln(ctx.Stdout, node.String())

	return err
}
