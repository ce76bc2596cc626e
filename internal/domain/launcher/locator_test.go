package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Notes</title></head>
<body><div id="root">Loading notes</div></body>
</html>
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireLaunchError(t *testing.T, err error, code ErrorCode) *LaunchError {
	t.Helper()
	require.Error(t, err)
	lerr, ok := AsLaunchError(err)
	require.True(t, ok, "expected *LaunchError, got %T", err)
	require.Equal(t, code, lerr.Code, lerr.DetailedReport())
	return lerr
}

func TestLocateDefaultCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), sampleHTML)

	doc, err := NewLocator().Locate(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "index.html"), doc.Path)
	assert.True(t, strings.HasPrefix(doc.URL, "file:///"))
	assert.True(t, strings.HasSuffix(doc.URL, "/index.html"))
	assert.Equal(t, "Notes", doc.Title)
	assert.True(t, strings.HasPrefix(doc.MIME, "text/html"))
}

func TestLocateFallsBackInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build", "index.html"), sampleHTML)
	writeFile(t, filepath.Join(dir, "public", "index.html"), sampleHTML)

	doc, err := NewLocator().Locate(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "build", "index.html"), doc.Path)
}

func TestLocateSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "index.html"), 0o755))
	writeFile(t, filepath.Join(dir, "dist", "index.html"), sampleHTML)

	doc, err := NewLocator().Locate(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dist", "index.html"), doc.Path)
}

func TestLocateGlobCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "out", "b", "main.html"), sampleHTML)
	writeFile(t, filepath.Join(dir, "out", "a", "main.html"), sampleHTML)

	doc, err := NewLocator().Locate(dir, []string{"out/**/main.html"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "a", "main.html"), doc.Path)
}

func TestLocateInvalidPattern(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLocator().Locate(dir, []string{"dist/[*.html"})
	lerr := requireLaunchError(t, err, ErrorCodeIndexNotFound)
	assert.Len(t, lerr.AccessErrors, 1)
}

func TestLocateIndexNotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLocator().Locate(dir, nil)
	lerr := requireLaunchError(t, err, ErrorCodeIndexNotFound)

	require.Len(t, lerr.SearchedPaths, len(DefaultIndexCandidates))
	for i, candidate := range DefaultIndexCandidates {
		assert.Equal(t, filepath.Join(dir, filepath.FromSlash(candidate)), lerr.SearchedPaths[i])
	}
	assert.Equal(t, dir, lerr.Path)
	assert.Empty(t, lerr.AccessErrors)
}

func TestLocateFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "releases", "v2", "index.html"), sampleHTML)
	require.NoError(t, os.Symlink(filepath.Join("releases", "v2", "index.html"), filepath.Join(dir, "index.html")))

	doc, err := NewLocator().Locate(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.html"), doc.Path)
	assert.Contains(t, doc.URL, "/releases/v2/index.html")
}

func TestLocateSymlinkErrors(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		dir := t.TempDir()
		link := filepath.Join(dir, "index.html")
		require.NoError(t, os.Symlink("index.html", link))

		_, err := NewLocator().Locate(dir, nil)
		lerr := requireLaunchError(t, err, ErrorCodeSymbolicLink)
		assert.Equal(t, LinkCircularReference, lerr.LinkKind)
	})

	t.Run("cycle", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Symlink("b.html", filepath.Join(dir, "index.html")))
		require.NoError(t, os.Symlink("index.html", filepath.Join(dir, "b.html")))

		_, err := NewLocator().Locate(dir, nil)
		lerr := requireLaunchError(t, err, ErrorCodeSymbolicLink)
		assert.Equal(t, LinkCircularReference, lerr.LinkKind)
	})

	t.Run("broken", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Symlink("missing.html", filepath.Join(dir, "index.html")))

		_, err := NewLocator().Locate(dir, nil)
		lerr := requireLaunchError(t, err, ErrorCodeSymbolicLink)
		assert.Equal(t, LinkBroken, lerr.LinkKind)
		assert.Equal(t, filepath.Join(dir, "index.html"), lerr.Path)
	})

	t.Run("excessive recursion", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "real.html"), sampleHTML)

		const chain = MaxLinkHops + 4
		prev := "real.html"
		for i := 0; i < chain; i++ {
			name := fmt.Sprintf("link%02d.html", i)
			require.NoError(t, os.Symlink(prev, filepath.Join(dir, name)))
			prev = name
		}
		require.NoError(t, os.Symlink(prev, filepath.Join(dir, "index.html")))

		_, err := NewLocator().Locate(dir, nil)
		lerr := requireLaunchError(t, err, ErrorCodeSymbolicLink)
		assert.Equal(t, LinkExcessiveRecursion, lerr.LinkKind)
	})
}

func TestLocateInvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain text", "just some notes, nothing to render\n"},
		{"empty body", "<!DOCTYPE html><html><head><title>Empty</title></head><body>   </body></html>"},
		{"binary", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "index.html"), tt.content)

			_, err := NewLocator().Locate(dir, nil)
			lerr := requireLaunchError(t, err, ErrorCodeInvalidFileContent)
			assert.Equal(t, filepath.Join(dir, "index.html"), lerr.Path)
			assert.NotEmpty(t, lerr.Context["reason"])
		})
	}
}

func TestLocateAccessDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	writeFile(t, path, sampleHTML)
	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	_, err := NewLocator().Locate(dir, nil)
	lerr := requireLaunchError(t, err, ErrorCodeFileAccessDenied)
	assert.Equal(t, path, lerr.Path)
	assert.NotContains(t, lerr.UserMessage(), dir)
}
