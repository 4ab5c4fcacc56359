package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeYAML = `
name: Ada Lovelace
summary: Analyst and programmer
skills: [Ruby, Python, Java, C++, Go]
experience:
  - company: Analytical Engines
    title: Programmer
    highlights: [Wrote the first algorithm, Annotated the memoir]
  - company: Royal Society
    title: Correspondent
    highlights: [Corresponded with Babbage]
contact:
  email: ada@example.com
  links:
    github: ada
`

func mustDecode(t *testing.T, src string) Value {
	t.Helper()
	v, err := Decode([]byte(src))
	require.NoError(t, err)
	return v
}

func TestGet(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	tests := []struct {
		name string
		path string
		want any
	}{
		{"top-level scalar", "name", "Ada Lovelace"},
		{"nested mapping", "contact.links.github", "ada"},
		{"sequence reads first element", "experience.company", "Analytical Engines"},
		{"sequence leaf is a sequence", "experience.highlights", []any{"Wrote the first algorithm", "Annotated the memoir"}},
		{"missing top-level", "publications", nil},
		{"missing intermediate", "contact.phone.mobile", nil},
		{"through scalar", "name.first", nil},
		{"empty path", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Get(doc, tt.path)
			if tt.want == nil {
				assert.True(t, IsUndefined(got), "expected undefined, got %v", toNative(got))
				return
			}
			if diff := cmp.Diff(tt.want, toNative(got)); diff != "" {
				t.Errorf("Get(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestGet_EmptySequenceIsUndefined(t *testing.T) {
	doc := mustDecode(t, `experience: []`)
	assert.True(t, IsUndefined(Get(doc, "experience.company")))
}

func TestSet_TopLevel(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	require.NoError(t, Set(doc, "summary", String("Tailored summary")))

	got, ok := AsString(Get(doc, "summary"))
	require.True(t, ok)
	assert.Equal(t, "Tailored summary", got)
}

func TestSet_NestedMapping(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	require.NoError(t, Set(doc, "contact.links.github", String("lovelace")))

	got, _ := AsString(Get(doc, "contact.links.github"))
	assert.Equal(t, "lovelace", got)
	email, _ := AsString(Get(doc, "contact.email"))
	assert.Equal(t, "ada@example.com", email)
}

func TestSet_BroadcastsOverSequence(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	require.NoError(t, Set(doc, "experience.title", String("Engineer")))

	exp := Get(doc, "experience").(*Sequence)
	require.Len(t, exp.Items, 2)
	for _, item := range exp.Items {
		title, _ := AsString(item.(*Mapping).Get("title"))
		assert.Equal(t, "Engineer", title)
	}
}

func TestSet_BroadcastCopiesAreIndependent(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	require.NoError(t, Set(doc, "experience.tags", NewSequence(String("a"))))

	exp := Get(doc, "experience").(*Sequence)
	first := exp.Items[0].(*Mapping).Get("tags").(*Sequence)
	first.Items = append(first.Items, String("b"))

	second := exp.Items[1].(*Mapping).Get("tags").(*Sequence)
	assert.Len(t, second.Items, 1)
}

func TestSet_InvalidPath(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	tests := []struct {
		name string
		path string
	}{
		{"missing parent", "publications.title"},
		{"scalar parent", "name.first"},
		{"sequence of scalars", "skills.level"},
		{"empty path", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := EncodeJSON(doc)
			require.NoError(t, err)

			err = Set(doc, tt.path, String("x"))
			var pathErr *InvalidPathError
			require.True(t, errors.As(err, &pathErr), "expected InvalidPathError, got %v", err)
			assert.Equal(t, tt.path, pathErr.Path)

			after, err := EncodeJSON(doc)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	paths := []string{
		"name",
		"summary",
		"contact.email",
		"contact.links.github",
		"experience.company",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			doc := mustDecode(t, resumeYAML)
			v := Get(doc, path)
			require.Equal(t, KindScalar, v.Kind())

			require.NoError(t, Set(doc, path, v))
			assert.Equal(t, v, Get(doc, path))
		})
	}
}

func TestSplit(t *testing.T) {
	parent, leaf := Split("experience.highlights")
	assert.Equal(t, "experience", parent)
	assert.Equal(t, "highlights", leaf)

	parent, leaf = Split("summary")
	assert.Equal(t, "", parent)
	assert.Equal(t, "summary", leaf)
}
