package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(CurationFile, "filter-items")
	require.NoError(t, err)
	assert.Contains(t, prompt, "indices of the items to KEEP")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(CurationFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	template := "Job: {{.JobContext}} / Field: {{.Field}}"
	data := map[string]string{
		"JobContext": "mentions {{.Field}} literally",
		"Field":      "skills",
	}

	assert.Equal(t, "Job: mentions {{.Field}} literally / Field: skills", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(AnnotationFile, "match-evidence", map[string]string{
		"JobContext": "Senior Go engineer",
		"Body":       "Built Go services",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Senior Go engineer")
	assert.NotContains(t, out, "{{.Body}}")
}

func TestAllPromptsRenderWithoutLeftoverPlaceholders(t *testing.T) {
	ClearCache()

	data := map[string]string{
		"JobContext": "x", "Field": "x", "Items": "x", "MaxIndex": "x",
		"Completeness": "x", "Count": "x", "Original": "x", "Body": "x",
	}
	for _, file := range []string{CurationFile, AnnotationFile} {
		keys, err := List(file)
		require.NoError(t, err)
		for _, key := range keys {
			out, err := Render(file, key, data)
			require.NoError(t, err)
			assert.NotContains(t, out, "{{.", "%s/%s", file, key)
		}
	}
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(CurationFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"filter-items", "reorder-items", "reorder-keep-all", "reorder-may-drop", "rewrite-text"}, keys)
}
