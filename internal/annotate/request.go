package annotate

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/prompts"
)

// Reasoner is the slice of the text service used to find evidence.
type Reasoner interface {
	Reason(ctx context.Context, prompt string) (string, error)
}

// RequestTriples asks svc for phrases in body that support jobContext. A
// response that is not a valid triple array is a *MalformedInputError.
func RequestTriples(ctx context.Context, svc Reasoner, jobContext, body string) ([]Triple, error) {
	prompt, err := prompts.Render(prompts.AnnotationFile, "match-evidence", map[string]string{
		"JobContext": jobContext,
		"Body":       body,
	})
	if err != nil {
		return nil, err
	}
	response, err := svc.Reason(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("evidence request failed: %w", err)
	}
	return ParseTriples([]byte(llm.CleanJSONBlock(response)))
}
