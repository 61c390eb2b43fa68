package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/snapfilter"
	"github.com/shibukawa/snapfilter/parser"
	"google.golang.org/protobuf/proto"
)

// CompileCmd represents the compile command
type CompileCmd struct {
	Expr   string `arg:"" optional:"" help:"Filter expression (default: stdin)"`
	Format string `short:"f" help:"Output format: json, yaml or proto (default: output.format from config)"`
	Output string `short:"o" help:"Output file (default: stdout)"`
	Indent int    `help:"Indent width for json and yaml output (default: output.indent from config)" default:"-1"`
}

// Run executes the compile command
func (cmd *CompileCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	format := cmd.Format
	if format == "" {
		format = config.Output.Format
	}

	indent := cmd.Indent
	if indent < 0 {
		indent = config.Output.Indent
	}

	source, err := readInput(ctx, cmd.Expr)
	if err != nil {
		return err
	}

	node, err := snapfilter.CompileTree(source)
	if err != nil {
		return err
	}

	data, err := render(node, format, indent)
	if err != nil {
		return err
	}

	if err := writeOutput(ctx, cmd.Output, data); err != nil {
		return err
	}

	if ctx.Verbose && cmd.Output != "" {
		ctx.Info("Wrote %s output to %s", format, cmd.Output)
	}

	return nil
}

// render serializes node in the requested format. JSON with indent 0 is the
// canonical compact form.
func render(node parser.AstNode, format string, indent int) ([]byte, error) {
	if indent < 0 || indent > 8 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidIndent, indent)
	}

	switch format {
	case snapfilter.FormatJSON:
		text, err := parser.Encode(node)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", snapfilter.ErrEncodeTree, err)
		}

		if indent == 0 {
			return []byte(text + "\n"), nil
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(text), "", strings.Repeat(" ", indent)); err != nil {
			return nil, fmt.Errorf("failed to indent JSON: %w", err)
		}

		buf.WriteByte('\n')

		return buf.Bytes(), nil

	case snapfilter.FormatYAML:
		if indent == 0 {
			indent = 2
		}

		data, err := yaml.MarshalWithOptions(parser.ToMap(node), yaml.Indent(indent))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}

		return data, nil

	case snapfilter.FormatProto:
		message, err := parser.ToStruct(node)
		if err != nil {
			return nil, err
		}

		data, err := proto.MarshalOptions{Deterministic: true}.Marshal(message)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal protobuf: %w", err)
		}

		return data, nil

	default:
		return nil, fmt.Errorf("%w: '%s' (must be one of json, yaml, proto)", ErrUnknownFormat, format)
	}
}
