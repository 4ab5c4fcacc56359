package curation

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonathan/resume-curator/internal/document"
	"github.com/jonathan/resume-curator/internal/permissions"
	"github.com/jonathan/resume-curator/internal/prompts"
)

// TextService is the external text generator. Both calls block until the
// provider answers or its own retry budget is spent.
type TextService interface {
	// Generate is the fast path.
	Generate(ctx context.Context, prompt string) (string, error)
	// Reason is the higher-quality path.
	Reason(ctx context.Context, prompt string) (string, error)
}

// Filter asks the service which items of the sequence at path to keep and
// replaces the sequence with those items in the returned order. Out-of-range
// or repeated indices are a *PermissionViolation. It is a no-op (false, nil)
// when the field is not a non-empty sequence.
func Filter(ctx context.Context, svc TextService, doc document.Value, path, jobContext string) (bool, error) {
	seq, ok := document.Get(doc, path).(*document.Sequence)
	if !ok || seq.Len() == 0 {
		return false, nil
	}

	prompt, err := sequencePrompt("filter-items", path, jobContext, seq, "")
	if err != nil {
		return false, err
	}
	response, err := svc.Generate(ctx, prompt)
	if err != nil {
		return false, &APICallError{Field: path, Operation: permissions.Remove, Cause: err}
	}

	indices, err := parseIndices(path, permissions.Remove, response)
	if err != nil {
		return false, err
	}
	if err := checkSelection(path, permissions.Remove, indices, seq.Len()); err != nil {
		return false, err
	}

	return true, document.Set(doc, path, pick(seq, indices))
}

// Reorder asks the service for a new order of the sequence at path. When
// canRemove is false the response must be a permutation of every index, and
// anything else is a *PermissionViolation naming the broken rule. When
// canRemove is true any duplicate-free subset is accepted.
func Reorder(ctx context.Context, svc TextService, doc document.Value, path, jobContext string, canRemove bool) (bool, error) {
	seq, ok := document.Get(doc, path).(*document.Sequence)
	if !ok || seq.Len() == 0 {
		return false, nil
	}

	completeness, err := reorderCompleteness(canRemove, seq.Len())
	if err != nil {
		return false, err
	}
	prompt, err := sequencePrompt("reorder-items", path, jobContext, seq, completeness)
	if err != nil {
		return false, err
	}
	response, err := svc.Generate(ctx, prompt)
	if err != nil {
		return false, &APICallError{Field: path, Operation: permissions.Reorder, Cause: err}
	}

	indices, err := parseIndices(path, permissions.Reorder, response)
	if err != nil {
		return false, err
	}
	if canRemove {
		err = checkSelection(path, permissions.Reorder, indices, seq.Len())
	} else {
		err = checkPermutation(path, indices, seq.Len())
	}
	if err != nil {
		return false, err
	}

	return true, document.Set(doc, path, pick(seq, indices))
}

// Rewrite replaces the string at path with tailored text from the service.
// When the field's parent is a sequence of mappings, each element's string is
// rewritten with its own call; elements whose leaf is not a string are left
// alone. No constraint is placed on the generated text. It returns how many
// strings were rewritten.
func Rewrite(ctx context.Context, svc TextService, doc document.Value, path, jobContext string) (int, error) {
	container, leaf := document.Parent(doc, path)

	if seq, ok := container.(*document.Sequence); ok {
		rewritten := 0
		for _, item := range seq.Items {
			m, ok := item.(*document.Mapping)
			if !ok {
				continue
			}
			original, ok := document.AsString(m.Get(leaf))
			if !ok {
				continue
			}
			text, err := rewriteText(ctx, svc, path, jobContext, original)
			if err != nil {
				return rewritten, err
			}
			m.Set(leaf, document.String(text))
			rewritten++
		}
		return rewritten, nil
	}

	original, ok := document.AsString(document.Get(doc, path))
	if !ok {
		return 0, nil
	}
	text, err := rewriteText(ctx, svc, path, jobContext, original)
	if err != nil {
		return 0, err
	}
	if err := document.Set(doc, path, document.String(text)); err != nil {
		return 0, err
	}
	return 1, nil
}

func rewriteText(ctx context.Context, svc TextService, path, jobContext, original string) (string, error) {
	prompt, err := prompts.Render(prompts.CurationFile, "rewrite-text", map[string]string{
		"JobContext": jobContext,
		"Field":      path,
		"Original":   original,
	})
	if err != nil {
		return "", err
	}
	response, err := svc.Reason(ctx, prompt)
	if err != nil {
		return "", &APICallError{Field: path, Operation: permissions.Rewrite, Cause: err}
	}
	return strings.TrimSpace(response), nil
}

func sequencePrompt(key, path, jobContext string, seq *document.Sequence, completeness string) (string, error) {
	items, err := document.EncodeJSON(seq)
	if err != nil {
		return "", err
	}
	return prompts.Render(prompts.CurationFile, key, map[string]string{
		"JobContext":   jobContext,
		"Field":        path,
		"Items":        string(items),
		"MaxIndex":     strconv.Itoa(seq.Len() - 1),
		"Completeness": completeness,
	})
}

func reorderCompleteness(canRemove bool, n int) (string, error) {
	if canRemove {
		return prompts.Get(prompts.CurationFile, "reorder-may-drop")
	}
	return prompts.Render(prompts.CurationFile, "reorder-keep-all", map[string]string{
		"Count": strconv.Itoa(n),
	})
}

func pick(seq *document.Sequence, indices []int) *document.Sequence {
	out := &document.Sequence{Items: make([]document.Value, len(indices))}
	for i, idx := range indices {
		out.Items[i] = seq.Items[idx]
	}
	return out
}
