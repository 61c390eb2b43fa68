package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/shibukawa/snapfilter"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	NoColor bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// LoadConfig loads the configuration and applies its color mode
func (c *Context) LoadConfig() (*snapfilter.Config, error) {
	config, err := snapfilter.LoadConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch {
	case c.NoColor || config.Diagnostics.Color == snapfilter.ColorNever:
		color.NoColor = true
	case config.Diagnostics.Color == snapfilter.ColorAlways:
		color.NoColor = false
	}

	if c.Verbose {
		if fileExists(c.Config) {
			c.Info("Using config: %s", c.Config)
		} else {
			c.Info("Config %s not found, using defaults", c.Config)
		}
	}

	return config, nil
}

// Info prints a verbose message to stderr
func (c *Context) Info(format string, args ...any) {
	color.New(color.FgBlue).Fprintf(c.Stderr, format+"\n", args...)
}

// Success prints a status message to stderr unless quiet
func (c *Context) Success(format string, args ...any) {
	if c.Quiet {
		return
	}
	color.New(color.FgGreen).Fprintf(c.Stderr, format+"\n", args...)
}

// CLI represents the command-line interface
var CLI struct {
	Config    string       `help:"Configuration file path" default:"snapfilter.yaml"`
	Verbose   bool         `help:"Enable verbose output" short:"v"`
	Quiet     bool         `help:"Suppress output" short:"q"`
	NoColor   bool         `help:"Disable colored output"`
	Compile   CompileCmd   `cmd:"" help:"Compile a filter expression into its filter tree"`
	Check     CheckCmd     `cmd:"" help:"Check a filter expression and report the first error"`
	Fmt       FmtCmd       `cmd:"" help:"Print a filter expression in normalized form"`
	Decode    DecodeCmd    `cmd:"" help:"Decode a serialized filter tree back into an expression"`
	Transform TransformCmd `cmd:"" help:"Run a CEL record transformation"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "snapfilter v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	if CLI.NoColor {
		color.NoColor = true
	}

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		NoColor: CLI.NoColor,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  color.Error,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
