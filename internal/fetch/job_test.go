package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.html, s.err
}

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

var longDescription = strings.Repeat("Build reliable Go services. ", 30)

func TestJobLoader_FromURL(t *testing.T) {
	server := serve(t, `<html><body><nav>Jobs</nav><div class="job-description"><p>`+longDescription+`</p></div></body></html>`)
	renderer := &stubRenderer{}

	text, err := NewJobLoader(nil, WithRenderer(renderer)).FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(longDescription), text)
	assert.Zero(t, renderer.calls)
}

func TestJobLoader_FromURL_BrowserFallback(t *testing.T) {
	server := serve(t, `<html><body><div id="root">Loading</div></body></html>`)
	renderer := &stubRenderer{html: `<html><body><main><p>` + longDescription + `</p></main></body></html>`}

	text, err := NewJobLoader(nil, WithRenderer(renderer)).FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
	assert.Contains(t, text, "Build reliable Go services.")
}

func TestJobLoader_FromURL_RendererFailureKeepsStaticText(t *testing.T) {
	server := serve(t, `<html><body><main>Go engineer wanted</main></body></html>`)
	renderer := &stubRenderer{err: errors.New("chrome not installed")}

	text, err := NewJobLoader(nil, WithRenderer(renderer)).FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Go engineer wanted", text)
}

func TestJobLoader_FromURL_NoText(t *testing.T) {
	server := serve(t, `<html><body><script>render()</script></body></html>`)

	_, err := NewJobLoader(nil).FromURL(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "no job description")
}

func TestJobLoader_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  Senior Go Engineer\n"), 0644))

	text, err := NewJobLoader(nil).FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", text)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0644))
	_, err = NewJobLoader(nil).FromFile(empty)
	assert.Error(t, err)
}

func TestJobLoader_Load(t *testing.T) {
	loader := NewJobLoader(nil)

	_, err := loader.Load(context.Background(), "", "")
	assert.ErrorContains(t, err, "required")

	_, err = loader.Load(context.Background(), "job.txt", "https://example.com/job")
	assert.ErrorContains(t, err, "mutually exclusive")

	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go role"), 0644))
	text, err := loader.Load(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "Go role", text)
}
