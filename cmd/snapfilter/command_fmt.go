package main

import (
	"fmt"
	"strings"

	"github.com/shibukawa/snapfilter"
	"github.com/shibukawa/snapfilter/parser"
)

// FmtCmd represents the fmt command
type FmtCmd struct {
	Expr  string `arg:"" optional:"" help:"Filter expression (default: stdin)"`
	Check bool   `short:"c" help:"Report whether the expression is already normalized (exit 1 if not)"`
}

// Run executes the fmt command
func (cmd *FmtCmd) Run(ctx *Context) error {
	source, err := readInput(ctx, cmd.Expr)
	if err != nil {
		return err
	}

	node, err := snapfilter.CompileTree(source)
	if err != nil {
		return err
	}

	formatted := node.String()

	if cmd.Check {
		if strings.TrimSpace(source) != formatted {
			return fmt.Errorf("%w: expected %s", ErrNotFormatted, formatted)
		}

		ctx.Success("already formatted")

		return nil
	}

	_, err = fmt.Fprintln(ctx.Stdout, formatted)

	return err
}

// fieldList returns the distinct field names of node, joined for display
func fieldList(node parser.AstNode) string {
	return strings.Join(parser.Fields(node), ", ")
}
