package rules

import (
	"errors"
	"fmt"
)

// CompileError reports a rule that cannot be compiled. Compile errors abort
// the build of the world that owns the rule.
type CompileError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Rule is the rule text as written.
	Rule string

	// Spot names the entrance or location that owns the rule, if any.
	Spot string
}

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeSyntax indicates the rule text does not parse.
	ErrCodeSyntax ErrorCode = "SYNTAX"

	// ErrCodeUnknownIdentifier indicates a name that resolves to nothing.
	ErrCodeUnknownIdentifier ErrorCode = "UNKNOWN_IDENTIFIER"

	// ErrCodeUnknownFunction indicates a call to a name that is neither a
	// macro nor a state query.
	ErrCodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeArity indicates a call with the wrong number of arguments.
	ErrCodeArity ErrorCode = "ARITY"

	// ErrCodeBadTuple indicates a malformed (item, count) tuple.
	ErrCodeBadTuple ErrorCode = "BAD_TUPLE"

	// ErrCodeBadSubrule indicates malformed here() or at() arguments.
	ErrCodeBadSubrule ErrorCode = "BAD_SUBRULE"

	// ErrCodeAliasRecursion indicates a macro that expands into itself.
	ErrCodeAliasRecursion ErrorCode = "ALIAS_RECURSION"

	// ErrCodeUndefinedEvent indicates a rule requires an event no region
	// provides.
	ErrCodeUndefinedEvent ErrorCode = "UNDEFINED_EVENT"

	// ErrCodeUnknownRegion indicates at() names a region that does not exist.
	ErrCodeUnknownRegion ErrorCode = "UNKNOWN_REGION"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	switch {
	case e.Rule != "" && e.Spot != "":
		return fmt.Sprintf("%s: %s (rule=%q, spot=%s)", e.Code, e.Message, e.Rule, e.Spot)
	case e.Rule != "":
		return fmt.Sprintf("%s: %s (rule=%q)", e.Code, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCompileError returns true if the error is a CompileError.
// Uses errors.As to handle wrapped errors.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// IsAliasRecursion returns true if the error reports a recursive macro.
func IsAliasRecursion(err error) bool {
	return HasCode(err, ErrCodeAliasRecursion)
}

// IsUndefinedEvent returns true if the error reports a missing event.
func IsUndefinedEvent(err error) bool {
	return HasCode(err, ErrCodeUndefinedEvent)
}

// HasCode returns true if err is a CompileError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newError(code ErrorCode, format string, args ...any) *CompileError {
	return &CompileError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// annotate fills in the rule text and spot of a CompileError that does not
// carry them yet.
func annotate(err error, rule, spot string) error {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return err
	}
	if ce.Rule == "" {
		ce.Rule = rule
	}
	if ce.Spot == "" {
		ce.Spot = spot
	}
	return err
}
