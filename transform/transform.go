// Package transform runs record transformations written in CEL. A script
// sees the incoming record as the variable record, a map(string, string),
// and must evaluate to the transformed record of the same type:
//
//	{"level": record.level, "message": record.message + " (" + record.service + ")"}
package transform

import (
	"errors"
	"fmt"
	"maps"
	"reflect"

	"github.com/google/cel-go/cel"
)

// RecordVariable is the name scripts use for the incoming record.
const RecordVariable = "record"

// ErrNotARecord is wrapped by RuntimeError when a script evaluates to
// something other than a string map.
var ErrNotARecord = errors.New("result is not a map(string, string)")

var recordType = reflect.TypeOf(map[string]string{})

// CompileError reports a script that failed to parse or type-check.
type CompileError struct {
	Reason error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile transformation: %v", e.Reason)
}

func (e *CompileError) Unwrap() error {
	return e.Reason
}

// RuntimeError reports a script that failed while processing a record.
type RuntimeError struct {
	Reason error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("failed to run transformation: %v", e.Reason)
}

func (e *RuntimeError) Unwrap() error {
	return e.Reason
}

// Program is a compiled transformation. It is safe for concurrent use.
type Program struct {
	source  string
	program cel.Program
}

// Compile parses and type-checks source.
func Compile(source string) (*Program, error) {
	env, err := cel.NewEnv(
		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
		cel.Variable(RecordVariable, cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{Reason: issues.Err()}
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, &CompileError{Reason: err}
	}

	return &Program{source: source, program: program}, nil
}

// Source returns the script text the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// Run applies the transformation to record. The input map is not modified.
func (p *Program) Run(record map[string]string) (map[string]string, error) {
	if record == nil {
		record = map[string]string{}
	}

	out, _, err := p.program.Eval(map[string]any{RecordVariable: record})
	if err != nil {
		return nil, &RuntimeError{Reason: err}
	}

	native, err := out.ConvertToNative(recordType)
	if err != nil {
		return nil, &RuntimeError{Reason: fmt.Errorf("%w: got %s", ErrNotARecord, out.Type().TypeName())}
	}

	result, ok := native.(map[string]string)
	if !ok {
		return nil, &RuntimeError{Reason: ErrNotARecord}
	}

	// a script returning record unchanged hands back the caller's map
	return maps.Clone(result), nil
}
