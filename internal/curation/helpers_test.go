package curation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-curator/internal/document"
)

type reply struct {
	text string
	err  error
}

type recordedCall struct {
	method string
	prompt string
}

// stubService replays scripted responses per method and records every prompt.
type stubService struct {
	mu       sync.Mutex
	generate []reply
	reason   []reply
	calls    []recordedCall
}

func (s *stubService) onGenerate(texts ...string) *stubService {
	for _, t := range texts {
		s.generate = append(s.generate, reply{text: t})
	}
	return s
}

func (s *stubService) onReason(texts ...string) *stubService {
	for _, t := range texts {
		s.reason = append(s.reason, reply{text: t})
	}
	return s
}

func (s *stubService) Generate(_ context.Context, prompt string) (string, error) {
	return s.next("generate", prompt, &s.generate)
}

func (s *stubService) Reason(_ context.Context, prompt string) (string, error) {
	return s.next("reason", prompt, &s.reason)
}

func (s *stubService) next(method, prompt string, queue *[]reply) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedCall{method: method, prompt: prompt})
	if len(*queue) == 0 {
		return "", errors.New("stub: no scripted " + method + " response")
	}
	r := (*queue)[0]
	*queue = (*queue)[1:]
	return r.text, r.err
}

func (s *stubService) methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.method
	}
	return out
}

func decode(t *testing.T, src string) document.Value {
	t.Helper()
	v, err := document.Decode([]byte(src))
	require.NoError(t, err)
	return v
}

// native decodes the JSON encoding of v into plain Go values; numbers come
// back as float64.
func native(t *testing.T, v document.Value) any {
	t.Helper()
	data, err := document.EncodeJSON(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func encode(t *testing.T, v document.Value) string {
	t.Helper()
	out, err := document.EncodeJSON(v)
	require.NoError(t, err)
	return string(out)
}

// permutations returns every ordering of [0, n).
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, rest := range permutations(n - 1) {
		for pos := 0; pos <= len(rest); pos++ {
			p := make([]int, 0, n)
			p = append(p, rest[:pos]...)
			p = append(p, n-1)
			p = append(p, rest[pos:]...)
			out = append(out, p)
		}
	}
	return out
}
