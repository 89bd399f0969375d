package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDocx builds a minimal docx archive whose body holds the given
// paragraphs, each split across two runs.
func writeDocx(t *testing.T, path string, paragraphs ...string) {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		half := len(p) / 2
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r><w:r><w:t>%s</w:t></w:r></w:p>`, p[:half], p[half:])
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	part, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = part.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadDir(t *testing.T) {
	t.Run("loads supported files recursively", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.md"), []byte("beta"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.pdf"), []byte("binary"), 0o644))

		docs, err := LoadDir(dir)
		require.NoError(t, err)
		require.Len(t, docs, 2)

		byID := map[string]string{}
		for _, d := range docs {
			byID[d.ID] = d.Text
			assert.Equal(t, d.ID, d.Metadata["source"])
		}
		assert.Equal(t, "alpha", byID["a.txt"])
		assert.Equal(t, "beta", byID[filepath.Join("sub", "b.md")])
	})

	t.Run("extracts docx paragraph text", func(t *testing.T) {
		dir := t.TempDir()
		writeDocx(t, filepath.Join(dir, "handbook.docx"),
			"The first paragraph of the handbook.",
			"A second paragraph with more detail.")

		docs, err := LoadDir(dir)
		require.NoError(t, err)
		require.Len(t, docs, 1)

		assert.Equal(t, "handbook.docx", docs[0].ID)
		assert.Equal(t, "handbook.docx", docs[0].Metadata["source"])
		assert.Equal(t,
			"The first paragraph of the handbook.\n\nA second paragraph with more detail.",
			docs[0].Text)
	})

	t.Run("docx files mix with plain text files", func(t *testing.T) {
		dir := t.TempDir()
		writeDocx(t, filepath.Join(dir, "doc.docx"), "Word content.")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("plain content"), 0o644))

		docs, err := LoadDir(dir)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("corrupt docx fails the whole load", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("fine"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.docx"), []byte("not a zip"), 0o644))

		_, err := LoadDir(dir)
		assert.Error(t, err)
	})

	t.Run("docx without a document part is an error", func(t *testing.T) {
		dir := t.TempDir()

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		part, err := zw.Create("word/styles.xml")
		require.NoError(t, err)
		_, err = part.Write([]byte("<styles/>"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.docx"), buf.Bytes(), 0o644))

		_, err = LoadDir(dir)
		assert.Error(t, err)
	})

	t.Run("empty directory yields no documents", func(t *testing.T) {
		docs, err := LoadDir(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}
