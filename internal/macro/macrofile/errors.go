package macrofile

import (
	"errors"
	"fmt"
)

// Macro file errors.
var (
	// ErrInvalidFormat indicates a file that is not a macro file at all.
	ErrInvalidFormat = errors.New("invalid macro file format")

	// ErrUnsupportedVersion indicates a macro file of another version.
	ErrUnsupportedVersion = errors.New("unsupported macro file version")

	// ErrUnknownDocument indicates a step document extension that is
	// neither JSON nor YAML.
	ErrUnknownDocument = errors.New("unknown step document format")
)

// OpError records a failed file operation.
type OpError struct {
	Op   string // "load", "save", "read log", ...
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func opError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Path: path, Err: err}
}
