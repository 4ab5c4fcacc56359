package curation

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/permissions"
)

// parseIndices decodes a response that must be a JSON array of integers.
// Markdown fences are tolerated; any other surrounding text is not.
func parseIndices(field string, op permissions.Operation, response string) ([]int, error) {
	text := llm.CleanJSONBlock(response)
	if !strings.HasPrefix(text, "[") {
		return nil, &ParseError{Field: field, Operation: op, Response: response}
	}

	var indices []int
	if err := json.Unmarshal([]byte(text), &indices); err != nil {
		return nil, &ParseError{Field: field, Operation: op, Response: response, Cause: err}
	}
	if indices == nil {
		indices = []int{}
	}
	return indices, nil
}

// checkSelection enforces that every index addresses an existing item at most once.
func checkSelection(field string, op permissions.Operation, indices []int, n int) error {
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return &PermissionViolation{
				Field: field, Operation: op, Rule: RuleOutOfRange,
				Detail: fmt.Sprintf("index %d outside [0, %d)", idx, n),
			}
		}
		if seen[idx] {
			return &PermissionViolation{
				Field: field, Operation: op, Rule: RuleDuplicateIndex,
				Detail: fmt.Sprintf("index %d returned more than once", idx),
			}
		}
		seen[idx] = true
	}
	return nil
}

// checkPermutation enforces that indices is exactly a reordering of [0, n).
func checkPermutation(field string, indices []int, n int) error {
	if len(indices) < n {
		return &PermissionViolation{
			Field: field, Operation: permissions.Reorder, Rule: RuleItemRemoval,
			Detail: fmt.Sprintf("returned %d of %d indices but the field does not permit removal", len(indices), n),
		}
	}
	if len(indices) > n {
		return &PermissionViolation{
			Field: field, Operation: permissions.Reorder, Rule: RuleInvalidIndices,
			Detail: fmt.Sprintf("returned %d indices for %d items", len(indices), n),
		}
	}

	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	for i, idx := range sorted {
		if idx != i {
			return &PermissionViolation{
				Field: field, Operation: permissions.Reorder, Rule: RuleInvalidIndices,
				Detail: fmt.Sprintf("%v is not a permutation of 0..%d", indices, n-1),
			}
		}
	}
	return nil
}
