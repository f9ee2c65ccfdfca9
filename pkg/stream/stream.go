// Package stream provides the byte sources and sinks the model codec is driven
// through: files, in-memory buffers and standard output.
package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// InputKind identifies the backend of an Input.
type InputKind int

const (
	InputFile   InputKind = iota // Backed by an open file
	InputBuffer                  // Backed by an in-memory byte slice
)

// String returns a human-readable backend name.
func (k InputKind) String() string {
	switch k {
	case InputFile:
		return "file"
	case InputBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Input is a seekable byte source backed by either a file or a buffer.
type Input struct {
	kind InputKind
	name string
	file *os.File
	buf  *bytes.Reader
}

// OpenInput opens a file for reading.
func OpenInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return &Input{kind: InputFile, name: path, file: f}, nil
}

// NewBufferInput wraps data as an Input. The slice is not copied.
func NewBufferInput(data []byte) *Input {
	return &Input{kind: InputBuffer, name: "<buffer>", buf: bytes.NewReader(data)}
}

// Kind returns the backend type.
func (in *Input) Kind() InputKind { return in.kind }

// Name returns the file path, or "<buffer>" for in-memory input.
func (in *Input) Name() string { return in.name }

func (in *Input) Read(p []byte) (int, error) {
	switch in.kind {
	case InputFile:
		return in.file.Read(p)
	default:
		return in.buf.Read(p)
	}
}

func (in *Input) Seek(offset int64, whence int) (int64, error) {
	switch in.kind {
	case InputFile:
		return in.file.Seek(offset, whence)
	default:
		return in.buf.Seek(offset, whence)
	}
}

// Close releases the file handle. Closing a buffer input is a no-op.
func (in *Input) Close() error {
	if in.kind == InputFile && in.file != nil {
		return in.file.Close()
	}
	return nil
}

// OutputKind identifies the backend of an Output.
type OutputKind int

const (
	OutputFile     OutputKind = iota // Backed by a created file
	OutputStandard                   // Backed by standard output
)

// String returns a human-readable backend name.
func (k OutputKind) String() string {
	switch k {
	case OutputFile:
		return "file"
	case OutputStandard:
		return "stdout"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Output is a buffered byte sink backed by either a file or standard output.
type Output struct {
	kind OutputKind
	name string
	file *os.File
	w    *bufio.Writer
}

// CreateOutput creates (or truncates) a file for writing.
func CreateOutput(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return &Output{kind: OutputFile, name: path, file: f, w: bufio.NewWriter(f)}, nil
}

// StandardOutput returns an Output writing to os.Stdout.
func StandardOutput() *Output {
	return &Output{kind: OutputStandard, name: "<stdout>", file: os.Stdout, w: bufio.NewWriter(os.Stdout)}
}

// Kind returns the backend type.
func (out *Output) Kind() OutputKind { return out.kind }

// Name returns the file path, or "<stdout>".
func (out *Output) Name() string { return out.name }

func (out *Output) Write(p []byte) (int, error) {
	return out.w.Write(p)
}

// Flush writes any buffered data to the backend.
func (out *Output) Flush() error {
	return out.w.Flush()
}

// Close flushes buffered data and closes the file. Standard output stays open.
func (out *Output) Close() error {
	err := out.w.Flush()
	if out.kind == OutputFile {
		if cerr := out.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// WriteFileAtomic writes to a temporary file next to path and renames it into
// place once fn succeeds. On failure the destination is left untouched.
func WriteFileAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("setting mode of %s: %w", tmp.Name(), err)
	}

	w := bufio.NewWriter(tmp)
	if err = fn(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
