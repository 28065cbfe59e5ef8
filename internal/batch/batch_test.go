package batch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholasgasior/notebookmd"
)

const (
	titledNotebook = `{"cells":[{"cell_type":"markdown","source":"# A"}]}`
	imageNotebook  = `{"cells":[{"cell_type":"code","source":"plot()","outputs":[
		{"output_type":"display_data","data":{"image/png":"iVBORw0KGgo="}}]}]}`
	brokenNotebook = `{"cells":[{"cell_type":"widget","source":""}]}`
)

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiscover(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/src/b.ipynb":                                     titledNotebook,
		"/src/a.ipynb":                                     titledNotebook,
		"/src/part1/c.ipynb":                               titledNotebook,
		"/src/.ipynb_checkpoints/a-checkpoint.ipynb":       titledNotebook,
		"/src/part1/.ipynb_checkpoints/c-checkpoint.ipynb": titledNotebook,
		"/src/notes.md":                                    "# notes",
		"/src/data.json":                                   "{}",
	})

	r := New(Config{SourceDir: "/src", OutputDir: "/out", FileSystem: fs, Logger: discardLogger()})
	paths, err := r.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a.ipynb", "/src/b.ipynb", "/src/part1/c.ipynb"}, paths)
}

func TestDiscover_MissingSource(t *testing.T) {
	r := New(Config{SourceDir: "/nope", OutputDir: "/out", FileSystem: afero.NewMemMapFs(), Logger: discardLogger()})
	_, err := r.Discover()
	require.Error(t, err)

	_, err = r.Run(context.Background())
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	r := New(Config{SourceDir: "/src", OutputDir: "/out", FileSystem: afero.NewMemMapFs()})

	md, assetsDir := r.Paths("/src/part1/intro.ipynb")
	assert.Equal(t, "/out/part1/intro.md", md)
	assert.Equal(t, "/out/part1/intro_files", assetsDir)
}

func TestRun(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/src/a.ipynb":       titledNotebook,
		"/src/part1/b.ipynb": imageNotebook,
		"/src/part1/c.ipynb": imageNotebook,
	})

	r := New(Config{SourceDir: "/src", OutputDir: "/out", Workers: 2, FileSystem: fs, Logger: discardLogger()})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Converted)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Total())
	assert.False(t, summary.HasFailures())
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "/src/a.ipynb", summary.Results[0].Notebook)
	assert.Equal(t, "A", summary.Results[0].Title)

	md, err := afero.ReadFile(fs, "/out/a.md")
	require.NoError(t, err)
	assert.Equal(t, "# A\n\n", string(md))

	// Each notebook has its own assets directory and its own counter.
	for _, stem := range []string{"b", "c"} {
		md, err := afero.ReadFile(fs, "/out/part1/"+stem+".md")
		require.NoError(t, err)
		assert.Contains(t, string(md), "![output image]("+stem+"_files/output_000.png)")

		exists, err := afero.Exists(fs, "/out/part1/"+stem+"_files/output_000.png")
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestRun_Failures(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/src/a.ipynb":   titledNotebook,
		"/src/bad.ipynb": brokenNotebook,
	})

	r := New(Config{SourceDir: "/src", OutputDir: "/out", FileSystem: fs, Logger: discardLogger()})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.True(t, notebookmd.IsParseError(summary.Results[1].Err))

	exists, err := afero.Exists(fs, "/out/bad.md")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_Placeholder(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/src/bad.ipynb": brokenNotebook,
	})

	r := New(Config{SourceDir: "/src", OutputDir: "/out", Placeholder: true, FileSystem: fs, Logger: discardLogger()})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	md, err := afero.ReadFile(fs, "/out/bad.md")
	require.NoError(t, err)
	content := string(md)
	assert.True(t, strings.HasPrefix(content, "<!-- notebookmd: conversion error -->"))
	assert.Contains(t, content, "for `/src/bad.ipynb`")
	assert.Contains(t, content, `unknown cell_type "widget"`)
}

func TestRun_Frontmatter(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/src/a.ipynb": titledNotebook,
		"/src/b.ipynb": imageNotebook,
	})

	r := New(Config{SourceDir: "/src", OutputDir: "/out", Frontmatter: true, FileSystem: fs, Logger: discardLogger()})
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	md, err := afero.ReadFile(fs, "/out/a.md")
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: A\nsource: /src/a.ipynb\n---\n\n# A\n\n", string(md))

	md, err = afero.ReadFile(fs, "/out/b.md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "---\nsource: /src/b.ipynb\nassets:\n"))
	assert.Contains(t, string(md), "/out/b_files/output_000.png")
}

func TestRun_ConverterOptions(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/b.ipynb": imageNotebook})

	r := New(Config{
		SourceDir:  "/src",
		OutputDir:  "/out",
		Options:    []notebookmd.Option{notebookmd.WithEmbedImages(true), notebookmd.WithCodeLanguage("py")},
		FileSystem: fs,
		Logger:     discardLogger(),
	})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Results[0].Assets)

	md, err := afero.ReadFile(fs, "/out/b.md")
	require.NoError(t, err)
	assert.Contains(t, string(md), "```py\nplot()\n```")
	assert.Contains(t, string(md), "data:image/png;base64,iVBORw0KGgo=")
}

func TestRun_Cancelled(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/src/a.ipynb": titledNotebook})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(Config{SourceDir: "/src", OutputDir: "/out", FileSystem: fs, Logger: discardLogger()})
	summary, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Failed)

	exists, _ := afero.Exists(fs, "/out/a.md")
	assert.False(t, exists)
}
