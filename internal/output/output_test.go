package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panopto-urls/internal/media"
)

var lectures = []media.VideoEntry{
	{URL: "https://cdn/a.mp4", Title: "Lecture_1_Intro"},
	{URL: "https://cdn/b.mp4", Title: "Lecture_2_Review"},
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		entries  []media.VideoEntry
		opts     Options
		expected string
	}{
		{
			"plain list",
			lectures,
			Options{},
			"https://cdn/a.mp4\nhttps://cdn/b.mp4\n",
		},
		{
			"plain list ignores cookie",
			lectures,
			Options{Cookie: "abc123", CookieName: ".ASPXAUTH"},
			"https://cdn/a.mp4\nhttps://cdn/b.mp4\n",
		},
		{
			"xargs without cookie",
			lectures,
			Options{Xargs: true},
			"-o \"Lecture_1_Intro.mp4\"\nhttps://cdn/a.mp4\n-o \"Lecture_2_Review.mp4\"\nhttps://cdn/b.mp4\n",
		},
		{
			"xargs with cookie",
			[]media.VideoEntry{{URL: "https://cdn/c.mp4", Title: "Final_Exam_Review"}},
			Options{Xargs: true, Cookie: "abc123", CookieName: ".ASPXAUTH"},
			"-o \"Final_Exam_Review.mp4\"\n-H \"Cookie: .ASPXAUTH=abc123\"\nhttps://cdn/c.mp4\n",
		},
		{
			"path separators replaced",
			[]media.VideoEntry{{URL: "https://cdn/d.mp4", Title: `a/b\c`}},
			Options{Xargs: true},
			"-o \"a_b_c.mp4\"\nhttps://cdn/d.mp4\n",
		},
		{
			"no entries",
			nil,
			Options{Xargs: true},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.entries, tt.opts))
		})
	}
}

func TestLinesDirectiveOrder(t *testing.T) {
	lines := Lines(lectures, Options{Xargs: true, Cookie: "abc123", CookieName: ".ASPXAUTH"})
	require.Len(t, lines, 6)

	for i := 0; i < len(lines); i += 3 {
		assert.Regexp(t, `^-o ".+\.mp4"$`, lines[i])
		assert.Equal(t, `-H "Cookie: .ASPXAUTH=abc123"`, lines[i+1])
		assert.Equal(t, lectures[i/3].URL, lines[i+2])
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "https://cdn/a.mp4\n"))
	assert.Equal(t, "https://cdn/a.mp4\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "urls.txt")

	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))
	require.NoError(t, WriteFile(path, "https://cdn/a.mp4\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.mp4\n", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".panopto-urls-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "urls.txt"), "x\n")
	assert.Error(t, err)
}
