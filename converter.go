// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package notebookmd converts Jupyter notebooks into a single Markdown document,
// writing image outputs to an assets directory or inlining them as data URIs.
package notebookmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/nicholasgasior/notebookmd/internal/assets"
)

// MIMENotebook is the MIME type of Jupyter notebook files.
const MIMENotebook = "application/x-ipynb+json"

// StreamInfo holds metadata about a candidate input.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Filename  string
	LocalPath string
}

// Result holds the output of a conversion.
type Result struct {
	Markdown string
	// Title is the first level-one heading of the notebook's Markdown cells.
	Title string
	// Assets lists the files written to the assets directory, in emission order.
	Assets []string
}

// Converter turns notebooks into Markdown. A Converter holds configuration only
// and may be used by several goroutines at once; every conversion gets its own
// output buffer and asset counter.
type Converter struct {
	fs             afero.Fs
	embedImages    bool
	codeLanguage   string
	detectLanguage bool
	htmlToMarkdown bool
	tidy           bool
}

// New creates a new Converter with the given options.
func New(opts ...Option) *Converter {
	c := &Converter{
		fs:           afero.NewOsFs(),
		codeLanguage: DefaultCodeLanguage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertNotebookToMarkdown converts the notebook at path with default options,
// writing image outputs into assetsDir.
func ConvertNotebookToMarkdown(path, assetsDir string) (string, error) {
	return ConvertNotebookToMarkdownWithOptions(path, assetsDir, ConvertOptions{})
}

// ConvertNotebookToMarkdownWithOptions converts the notebook at path using opts.
func ConvertNotebookToMarkdownWithOptions(path, assetsDir string, opts ConvertOptions) (string, error) {
	result, err := New(WithConvertOptions(opts)).ConvertFile(path, assetsDir)
	if err != nil {
		return "", err
	}
	return result.Markdown, nil
}

// Accepts reports whether info looks like a notebook.
func Accepts(info StreamInfo) bool {
	if info.Extension == ".ipynb" {
		return true
	}
	return strings.EqualFold(info.MIMEType, MIMENotebook)
}

// ConvertFile converts the notebook at path.
func (c *Converter) ConvertFile(path, assetsDir string) (*Result, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	return c.convert(path, data, assetsDir)
}

// ConvertReader converts a notebook read from r.
func (c *Converter) ConvertReader(r io.Reader, assetsDir string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read input: %w", err)}
	}
	return c.convert("", data, assetsDir)
}

// ConvertBytes converts notebook JSON held in memory.
func (c *Converter) ConvertBytes(data []byte, assetsDir string) (*Result, error) {
	return c.convert("", data, assetsDir)
}

// Render renders an already parsed notebook.
func (c *Converter) Render(nb *Notebook, assetsDir string) (*Result, error) {
	return c.render("", nb, assetsDir)
}

// DetectStreamInfo builds StreamInfo for path, sniffing the content type.
func (c *Converter) DetectStreamInfo(path string) (StreamInfo, error) {
	info := StreamInfo{
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
		LocalPath: path,
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return info, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return info, fmt.Errorf("detect content type: %w", err)
	}
	// Notebooks sniff as plain JSON; the extension tells them apart.
	if mtype.Is("application/json") && info.Extension == ".ipynb" {
		info.MIMEType = MIMENotebook
	} else {
		info.MIMEType = mtype.String()
	}
	return info, nil
}

func (c *Converter) convert(source string, data []byte, assetsDir string) (*Result, error) {
	nb, err := parseNotebook(decodeNotebookBytes(data))
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return c.render(source, nb, assetsDir)
}

func (c *Converter) render(source string, nb *Notebook, assetsDir string) (*Result, error) {
	store := assets.New(c.fs, assetsDir, c.embedImages)
	if err := store.Prepare(); err != nil {
		return nil, assetError(source, err)
	}

	var md strings.Builder
	md.Grow(estimateSize(nb))

	r := &renderer{
		md:             &md,
		assets:         store,
		language:       c.language(nb),
		htmlToMarkdown: c.htmlToMarkdown,
	}
	for _, cell := range nb.Cells {
		if err := r.renderCell(cell); err != nil {
			return nil, assetError(source, err)
		}
	}

	out := md.String()
	if c.tidy {
		out = tidyMarkdown(out)
	}

	return &Result{
		Markdown: out,
		Title:    notebookTitle(nb),
		Assets:   store.Written(),
	}, nil
}

func (c *Converter) language(nb *Notebook) string {
	if c.detectLanguage {
		if lang := nb.Metadata.Language(); lang != "" {
			return lang
		}
	}
	return c.codeLanguage
}
