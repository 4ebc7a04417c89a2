package data

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ootlogic/internal/world"
)

// ErrorCode categorizes load errors.
type ErrorCode string

const (
	// ErrCodeRead indicates a file could not be read.
	ErrCodeRead ErrorCode = "READ_FAILED"

	// ErrCodeParse indicates a file is not valid JSON, CUE or YAML.
	ErrCodeParse ErrorCode = "PARSE_FAILED"

	// ErrCodeSchema indicates well-formed data of the wrong shape.
	ErrCodeSchema ErrorCode = "SCHEMA"

	// ErrCodeInvalid indicates a description that fails validation.
	ErrCodeInvalid ErrorCode = "INVALID"

	// ErrCodeNotFound indicates a name in a tracker state that the world
	// does not have.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// LoadError reports a data file that cannot be used.
type LoadError struct {
	Code    ErrorCode
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error     // underlying error, if any

	// Issues lists every validation failure of an ErrCodeInvalid error.
	Issues []world.ValidationError
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError returns true if the error is a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// HasCode returns true if err is a LoadError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == code
}

func schemaError(path string, pos token.Pos, format string, args ...any) *LoadError {
	return &LoadError{Code: ErrCodeSchema, Path: path, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// fromCUE converts a CUE error, keeping its first position.
func fromCUE(code ErrorCode, path string, err error) *LoadError {
	le := &LoadError{Code: code, Path: path, Message: strings.TrimSpace(err.Error())}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
	} else {
		le.Message = strings.TrimSpace(cueerrors.Details(err, nil))
	}
	return le
}
