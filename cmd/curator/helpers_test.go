package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-curator/internal/config"
)

type rule struct {
	contains string
	reply    string
	err      error
}

// scriptedService answers each prompt with the first rule whose marker it
// contains. It is safe for concurrent use.
type scriptedService struct {
	mu      sync.Mutex
	rules   []rule
	prompts []string
}

func (s *scriptedService) Generate(_ context.Context, prompt string) (string, error) {
	return s.answer(prompt)
}

func (s *scriptedService) Reason(_ context.Context, prompt string) (string, error) {
	return s.answer(prompt)
}

func (s *scriptedService) answer(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	for _, r := range s.rules {
		if strings.Contains(prompt, r.contains) {
			return r.reply, r.err
		}
	}
	return "", errors.New("scripted service: no rule for prompt")
}

func (s *scriptedService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Markers that identify which prompt template was rendered.
const (
	filterMarker   = "indices of the items to KEEP"
	reorderMarker  = "giving the new order"
	rewriteMarker  = "ORIGINAL:"
	evidenceMarker = "CANDIDATE TEXT:"
)

// resetGlobals isolates a test from flag state left by another.
func resetGlobals(t *testing.T) {
	t.Helper()
	savedOpts, savedConfig, savedKey, savedVerbose := opts, configPath, apiKeyFlag, verbose
	savedDocID, savedBody, savedTriples := curateDocID, annotateBodyFile, annotateTriplesFile
	t.Cleanup(func() {
		opts, configPath, apiKeyFlag, verbose = savedOpts, savedConfig, savedKey, savedVerbose
		curateDocID, annotateBodyFile, annotateTriplesFile = savedDocID, savedBody, savedTriples
	})
	opts = config.Config{}
	configPath, apiKeyFlag, verbose = "", "", false
	curateDocID, annotateBodyFile, annotateTriplesFile = "", "", ""
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
