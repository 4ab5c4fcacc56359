package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateBody_FromTriplesFile(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	annotateBodyFile = writeFile(t, dir, "body.txt", "Ruby on Rails is great. Ruby is fun.")
	annotateTriplesFile = writeFile(t, dir, "triples.json", `[
		{"text": "Ruby", "match": "Ruby", "tier": "weak"},
		{"text": "Ruby on Rails", "match": "Rails", "tier": "strong"}
	]`)

	html, stats, err := annotateBody(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Wrapped)
	assert.Contains(t, html, `data-tier="strong" data-evidence="Rails">Ruby on Rails</span>`)
	assert.Contains(t, html, `data-tier="weak" data-evidence="Ruby">Ruby</span> is fun.`)
}

func TestAnnotateBody_MalformedTriplesFallBack(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	annotateBodyFile = writeFile(t, dir, "body.txt", "Ruby is fun.")
	annotateTriplesFile = writeFile(t, dir, "triples.json", `{"text": "Ruby"}`)

	html, stats, err := annotateBody(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>Ruby is fun.</p>\n", html)
	assert.Zero(t, stats.Wrapped)
}

func TestAnnotateBody_FromService(t *testing.T) {
	resetGlobals(t)
	annotateBodyFile = writeFile(t, t.TempDir(), "body.txt", "Shipped Kubernetes operators in Go.")
	svc := &scriptedService{rules: []rule{{
		contains: evidenceMarker,
		reply:    "```json\n[{\"text\": \"Kubernetes operators\", \"match\": \"k8s\", \"tier\": \"strong\"}]\n```",
	}}}

	html, stats, err := annotateBody(context.Background(), svc, "Platform engineer, Kubernetes")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Wrapped)
	assert.Contains(t, html, ">Kubernetes operators</span>")
	require.Len(t, svc.prompts, 1)
	assert.Contains(t, svc.prompts[0], "Platform engineer, Kubernetes")
}

func TestAnnotateBody_MissingBody(t *testing.T) {
	resetGlobals(t)
	annotateBodyFile = "/nonexistent/body.txt"
	_, _, err := annotateBody(context.Background(), nil, "")
	assert.ErrorContains(t, err, "failed to read body file")
}
