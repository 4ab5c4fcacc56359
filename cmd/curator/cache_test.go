package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeCache_ByDocumentDigest(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	opts.Document = writeFile(t, dir, "resume.json", `{"skills": ["Ruby", "Go"]}`)
	opts.Permissions = writeFile(t, dir, "permissions.yaml", "skills: [reorder]\n")
	opts.CacheDir = filepath.Join(dir, "cache")

	svc := &scriptedService{rules: []rule{{contains: reorderMarker, reply: "[1, 0]"}}}
	for _, job := range []string{"Go role", "Ruby role"} {
		_, err := curateDocument(context.Background(), svc, job)
		require.NoError(t, err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	require.NoError(t, runCachePurge(cmd, nil))
	assert.Contains(t, out.String(), "Purged 2 cached snapshot(s) of sha256:")

	res, err := curateDocument(context.Background(), svc, "Go role")
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 3, svc.calls())
}

func TestPurgeCache_ByDocID(t *testing.T) {
	resetGlobals(t)
	opts.CacheDir = t.TempDir()
	curateDocID = "ada"

	docID, n, err := purgeCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", docID)
	assert.Zero(t, n)
}

func TestPurgeCache_RequiresCacheAndDocument(t *testing.T) {
	resetGlobals(t)
	_, _, err := purgeCache(context.Background())
	assert.ErrorContains(t, err, "--cache-dir or --database-url is required")

	opts.CacheDir = t.TempDir()
	_, _, err = purgeCache(context.Background())
	assert.ErrorContains(t, err, "--doc-id or --document is required")
}
