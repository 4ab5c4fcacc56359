// Package curation applies permission-scoped, model-driven edits (filter,
// reorder, rewrite) to a document while rejecting any response that breaks a
// field's declared contract.
package curation

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-curator/internal/permissions"
)

// ErrCuration matches every error produced by a curation operation:
// errors.Is(err, ErrCuration).
var ErrCuration = errors.New("curation failed")

// Rule names the structural contract a response violated.
type Rule string

// Violated rules.
const (
	// RuleItemRemoval: a reorder on a field without remove permission returned fewer indices than items.
	RuleItemRemoval Rule = "item_removal"
	// RuleInvalidIndices: a reorder on a field without remove permission did not return a permutation.
	RuleInvalidIndices Rule = "invalid_indices"
	// RuleOutOfRange: an index outside [0, len).
	RuleOutOfRange Rule = "out_of_range"
	// RuleDuplicateIndex: the same index returned twice.
	RuleDuplicateIndex Rule = "duplicate_index"
)

// ParseError means the service response could not be parsed into the
// operation's expected shape.
type ParseError struct {
	Field     string
	Operation permissions.Operation
	Response  string
	Cause     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error: %s on %q: response is not a JSON array of integers", e.Operation, e.Field)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Is reports ErrCuration membership.
func (e *ParseError) Is(target error) bool { return target == ErrCuration }

// PermissionViolation means a well-formed response broke the field's
// structural contract. It is never coerced into a best-effort result.
type PermissionViolation struct {
	Field     string
	Operation permissions.Operation
	Rule      Rule
	Detail    string
}

func (e *PermissionViolation) Error() string {
	return fmt.Sprintf("permission violation: %s on %q broke rule %s: %s", e.Operation, e.Field, e.Rule, e.Detail)
}

// Is reports ErrCuration membership.
func (e *PermissionViolation) Is(target error) bool { return target == ErrCuration }

// APICallError wraps a text-generation failure that survived the service's own retries.
type APICallError struct {
	Field     string
	Operation permissions.Operation
	Cause     error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("API call failed: %s on %q: %v", e.Operation, e.Field, e.Cause)
}

func (e *APICallError) Unwrap() error { return e.Cause }

// Is reports ErrCuration membership.
func (e *APICallError) Is(target error) bool { return target == ErrCuration }

// CacheError represents a failure reading or writing the curation cache.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error { return e.Cause }

// retryable reports whether re-running the whole document may help: the
// service answered, but badly.
func retryable(err error) bool {
	var parseErr *ParseError
	var violation *PermissionViolation
	return errors.As(err, &parseErr) || errors.As(err, &violation)
}
