package main

import (
	"errors"
	"fmt"
)

// Exit codes returned by the process.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
	exitOutputError = 3
)

// ConfigError reports invalid arguments, filter expressions or a missing
// root directory. It aborts the run before traversal starts.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileAccessError reports a file or directory that could not be read.
// The entry is skipped.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// DecodeError reports content that is not valid under the resolved encoding.
// The file is skipped.
type DecodeError struct {
	Path     string
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s as %s: %v", e.Path, e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// OutputError reports a failure writing to the output sink. It is fatal.
type OutputError struct {
	Sink string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("cannot write output to %s: %v", e.Sink, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

var (
	errInvalidSequence = errors.New("invalid byte sequence")
	errBinaryContent   = errors.New("binary content")
)

// exitCode maps an error returned by the root command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfigError
	}
	var outErr *OutputError
	if errors.As(err, &outErr) {
		return exitOutputError
	}
	return exitFailure
}
