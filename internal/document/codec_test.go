package document

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_PreservesKeyOrder(t *testing.T) {
	doc := mustDecode(t, `{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": [1.5, "x"]}`)

	m, ok := doc.(*Mapping)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())

	out, err := EncodeJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"b":true,"a":null},"mid":[1.5,"x"]}`, string(out))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(""))
	assert.Error(t, err)

	_, err = Decode([]byte("{unterminated"))
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecode_TimestampLikeValuesStayStrings(t *testing.T) {
	doc := mustDecode(t, "start: 2021-03-01\n")
	s, ok := AsString(Get(doc, "start"))
	require.True(t, ok)
	assert.Equal(t, "2021-03-01", s)
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	doc := mustDecode(t, resumeYAML)

	out, err := EncodeYAML(doc)
	require.NoError(t, err)

	again := mustDecode(t, string(out))
	if diff := cmp.Diff(toNative(doc), toNative(again)); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, doc.(*Mapping).Keys(), again.(*Mapping).Keys())
}

func TestClone_IsDeep(t *testing.T) {
	doc := mustDecode(t, resumeYAML)
	clone := doc.Clone()

	require.NoError(t, Set(clone, "contact.email", String("changed@example.com")))
	clone.(*Mapping).Get("skills").(*Sequence).Items[0] = String("Rust")

	email, _ := AsString(Get(doc, "contact.email"))
	assert.Equal(t, "ada@example.com", email)
	first, _ := AsString(doc.(*Mapping).Get("skills").(*Sequence).Items[0])
	assert.Equal(t, "Ruby", first)
}

func TestWriteFile_ChoosesFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	doc := mustDecode(t, `{"name": "Ada", "skills": ["Go"]}`)

	jsonPath := filepath.Join(dir, "out.json")
	require.NoError(t, WriteFile(jsonPath, doc))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Ada"`)

	yamlPath := filepath.Join(dir, "out.yaml")
	require.NoError(t, WriteFile(yamlPath, doc))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Ada")

	loaded, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, toNative(doc), toNative(loaded))
}

func TestDecode_JSONWritesBackUnchanged(t *testing.T) {
	inputs := []string{
		`{"id":18446744073709551615,"n":-3}`,
		`{"a":1.5e400,"b":1.50,"c":-0,"d":1e2}`,
		`{"note":"R&D <ops> & more","k":"日本"}`,
		`[true,null,"x",[],{}]`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			doc := mustDecode(t, in)
			out, err := EncodeJSON(doc)
			require.NoError(t, err)
			assert.Equal(t, in, string(out))
		})
	}
}

func TestDecode_JSONEscapes(t *testing.T) {
	doc := mustDecode(t, `{"u": "https:\/\/github.com\/me", "e": "\ud83d\ude00"}`)

	u, ok := AsString(Get(doc, "u"))
	require.True(t, ok)
	assert.Equal(t, "https://github.com/me", u)

	e, ok := AsString(Get(doc, "e"))
	require.True(t, ok)
	assert.Equal(t, "\U0001F600", e)
}

func TestDecode_JSONTrailingData(t *testing.T) {
	for _, in := range []string{`{"a": 1} x`, `{"a": 1}{"b": 2}`, `[1, 2`} {
		_, err := Decode([]byte(in))
		var decodeErr *DecodeError
		assert.ErrorAs(t, err, &decodeErr, in)
	}
}

func TestDecode_YAMLFlowStyle(t *testing.T) {
	doc := mustDecode(t, `{name: Ada, skills: [Go, Ruby]}`)
	out, err := EncodeJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ada","skills":["Go","Ruby"]}`, string(out))
}

func TestEncodeYAML_KeepsJSONNumbers(t *testing.T) {
	doc := mustDecode(t, `{"big": 18446744073709551615, "ratio": 1.50, "n": 7}`)

	out, err := EncodeYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "big: 18446744073709551615\nratio: 1.50\nn: 7\n", string(out))
}

func TestNewScalar_LargeUnsigned(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), NewScalar(uint64(math.MaxUint64)).Interface())
	assert.Equal(t, 42, NewScalar(uint64(42)).Interface())

	doc := mustDecode(t, "id: 18446744073709551615\n")
	out, err := EncodeJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"id":18446744073709551615}`, string(out))
}
