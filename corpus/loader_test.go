package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/lexis/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCorpus(t, "\ufeff第一句话很重要。\n第二句话也很重要。\n")

	doc, err := Load(path)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(doc.Path))
	assert.Equal(t, "第一句话很重要。\n第二句话也很重要。\n", doc.Content, "byte order mark should be dropped")
	assert.Equal(t, core.FingerprintOf(doc.Content), doc.Fingerprint)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestAbsPath_Default(t *testing.T) {
	abs, err := AbsPath("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, filepath.Base(abs))
}

func TestPassages(t *testing.T) {
	doc, err := Load(writeCorpus(t, "a\n\nbb\nccccc\nddddd"))
	require.NoError(t, err)

	passages := Passages(doc, NewLineSplitter(5))
	assert.Equal(t, []core.Passage{
		{Index: 0, Text: "ccccc"},
		{Index: 1, Text: "ddddd"},
	}, passages)
}

func TestPassages_EmptyAndNil(t *testing.T) {
	doc, err := Load(writeCorpus(t, ""))
	require.NoError(t, err)

	assert.Empty(t, Passages(doc, NewLineSplitter(5)))
	assert.Empty(t, Passages(nil, NewLineSplitter(5)))
}
