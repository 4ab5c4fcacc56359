// Package permissions declares which fields of a document an external
// text-generation service may curate, and how.
package permissions

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Operation is one kind of mutation a field may receive.
type Operation string

// Supported operations.
const (
	// Remove allows items of a sequence field to be dropped.
	Remove Operation = "remove"
	// Reorder allows items of a sequence field to be permuted.
	Reorder Operation = "reorder"
	// Rewrite allows string fields to be replaced with generated text.
	Rewrite Operation = "rewrite"
)

// ParseOperation maps a configured name to an Operation. Matching is case
// insensitive; ok is false for names this version does not know.
func ParseOperation(name string) (Operation, bool) {
	switch Operation(strings.ToLower(strings.TrimSpace(name))) {
	case Remove:
		return Remove, true
	case Reorder:
		return Reorder, true
	case Rewrite:
		return Rewrite, true
	default:
		return "", false
	}
}

// OpSet is the ordered, duplicate-free set of operations declared for a field.
type OpSet []Operation

// Has reports whether op is in the set.
func (s OpSet) Has(op Operation) bool {
	for _, o := range s {
		if o == op {
			return true
		}
	}
	return false
}

func (s OpSet) String() string {
	names := make([]string, len(s))
	for i, op := range s {
		names[i] = string(op)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Entry grants a set of operations on one field path.
type Entry struct {
	Path       string
	Operations OpSet
	// Ignored lists configured operation names that were not recognized.
	Ignored []string
}

// CanRemove reports whether the entry permits dropping items.
func (e Entry) CanRemove() bool { return e.Operations.Has(Remove) }

// Registry is the full permission table. Entries keep their declaration order,
// which is the order the curation pipeline visits fields.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry builds a registry from entries. Duplicate paths and empty paths
// are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if err := r.add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(e Entry) error {
	if strings.TrimSpace(e.Path) == "" {
		return &ConfigError{Message: "field path must not be empty"}
	}
	if _, dup := r.index[e.Path]; dup {
		return &ConfigError{Message: fmt.Sprintf("field path %q declared more than once", e.Path)}
	}
	e.Operations = dedupe(e.Operations)
	r.index[e.Path] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

func dedupe(ops OpSet) OpSet {
	out := make(OpSet, 0, len(ops))
	for _, op := range ops {
		if !out.Has(op) {
			out = append(out, op)
		}
	}
	return out
}

// Entries returns the entries in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of declared fields.
func (r *Registry) Len() int { return len(r.entries) }

// Fingerprint is a stable digest of the effective table (paths and recognized
// operations, in order). Unrecognized operation names do not contribute.
func (r *Registry) Fingerprint() string {
	h := sha256.New()
	for _, e := range r.entries {
		fmt.Fprintf(h, "%s=%s;", e.Path, e.Operations)
	}
	return hex.EncodeToString(h.Sum(nil))
}
