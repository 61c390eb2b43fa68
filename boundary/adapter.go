// Package boundary exposes the filter compiler to callers that exchange raw
// buffers, such as a cgo export layer or a plugin host. Every compile hands
// back an owned buffer identified by a handle, which the caller must release
// exactly once.
package boundary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shibukawa/snapfilter"
)

// Sentinel errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownHandle   = errors.New("unknown buffer handle")
	ErrAlreadyReleased = errors.New("buffer already released")
)

// Result tells whether a compile succeeded. The buffer behind Handle holds
// the serialized tree on success and the error message otherwise.
type Result struct {
	OK     bool
	Handle uuid.UUID
}

// CompileFunc is the core compile entry point behind an Adapter.
type CompileFunc func(source string) (string, error)

// ReleasedHistory is how many released handles an Adapter remembers in
// order to report ErrAlreadyReleased.
const ReleasedHistory = 4096

// Adapter owns the buffers handed out across the boundary. It remembers only
// the most recent ReleasedHistory released handles; releasing or reading a
// handle that dropped out of that window reports ErrUnknownHandle.
type Adapter struct {
	compile CompileFunc

	mu       sync.Mutex
	buffers  map[uuid.UUID][]byte
	released map[uuid.UUID]struct{}
	order    []uuid.UUID // released handles, oldest first
	history  int
}

// NewAdapter returns an Adapter backed by snapfilter.Compile.
func NewAdapter() *Adapter {
	return NewAdapterWithCompiler(snapfilter.Compile)
}

// NewAdapterWithCompiler returns an Adapter backed by compile.
func NewAdapterWithCompiler(compile CompileFunc) *Adapter {
	return &Adapter{
		compile:  compile,
		buffers:  make(map[uuid.UUID][]byte),
		released: make(map[uuid.UUID]struct{}),
		history:  ReleasedHistory,
	}
}

// Compile compiles a length-delimited buffer. A single trailing NUL is
// tolerated; any other NUL byte makes the input invalid.
func (a *Adapter) Compile(input []byte) *Result {
	if n := len(input); n > 0 && input[n-1] == 0 {
		input = input[:n-1]
	}

	source, err := validate(input)
	if err != nil {
		return a.fail(err)
	}

	return a.run(source)
}

// CompileCString compiles the bytes up to the first NUL. A buffer with no
// terminator is rejected.
func (a *Adapter) CompileCString(input []byte) *Result {
	if input == nil {
		return a.fail(fmt.Errorf("%w: nil buffer", ErrInvalidInput))
	}

	end := bytes.IndexByte(input, 0)
	if end < 0 {
		return a.fail(fmt.Errorf("%w: missing NUL terminator", ErrInvalidInput))
	}

	return a.Compile(input[:end])
}

// CompileFramed compiles a buffer carrying a 4-byte big-endian length
// prefix followed by exactly that many bytes of source.
func (a *Adapter) CompileFramed(frame []byte) *Result {
	if len(frame) < 4 {
		return a.fail(fmt.Errorf("%w: frame shorter than its length prefix", ErrInvalidInput))
	}

	size := binary.BigEndian.Uint32(frame)
	body := frame[4:]

	if uint64(size) != uint64(len(body)) {
		return a.fail(fmt.Errorf("%w: frame declares %d bytes, carries %d", ErrInvalidInput, size, len(body)))
	}

	return a.Compile(body)
}

// Bytes returns the buffer behind handle. The slice stays valid until the
// handle is released and must not be modified.
func (a *Adapter) Bytes(handle uuid.UUID) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.buffers[handle]
	if !ok {
		return nil, a.missing(handle)
	}

	return buf, nil
}

// Release frees the buffer behind handle. A second release of the same
// handle returns ErrAlreadyReleased while the handle is still among the last
// ReleasedHistory releases.
func (a *Adapter) Release(handle uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.buffers[handle]; !ok {
		return a.missing(handle)
	}

	delete(a.buffers, handle)
	a.remember(handle)

	return nil
}

// remember must be called with mu held.
func (a *Adapter) remember(handle uuid.UUID) {
	a.released[handle] = struct{}{}
	a.order = append(a.order, handle)

	for len(a.order) > a.history {
		delete(a.released, a.order[0])
		a.order[0] = uuid.Nil
		a.order = a.order[1:]
	}
}

// Outstanding reports how many buffers have not been released yet.
func (a *Adapter) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.buffers)
}

// missing must be called with mu held.
func (a *Adapter) missing(handle uuid.UUID) error {
	if _, ok := a.released[handle]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyReleased, handle)
	}
	return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
}

func (a *Adapter) run(source string) *Result {
	out, err := a.compile(source)
	if err != nil {
		return a.fail(err)
	}

	return &Result{OK: true, Handle: a.store([]byte(out))}
}

func (a *Adapter) fail(err error) *Result {
	return &Result{OK: false, Handle: a.store([]byte(err.Error()))}
}

func (a *Adapter) store(buf []byte) uuid.UUID {
	handle := uuid.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.buffers[handle] = buf

	return handle
}

// validate checks the input before it reaches the tokenizer.
func validate(input []byte) (string, error) {
	switch {
	case input == nil:
		return "", fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	case len(input) == 0:
		return "", fmt.Errorf("%w: empty buffer", ErrInvalidInput)
	case !utf8.Valid(input):
		return "", fmt.Errorf("%w: buffer is not valid UTF-8", ErrInvalidInput)
	}

	if i := bytes.IndexByte(input, 0); i >= 0 {
		return "", fmt.Errorf("%w: NUL byte at offset %d", ErrInvalidInput, i)
	}

	return string(input), nil
}
