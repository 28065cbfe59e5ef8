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

// Package batch converts every notebook under a directory tree, several at a
// time. Each notebook gets its own Markdown file and its own assets directory
// so asset counters never collide.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/nicholasgasior/notebookmd"
)

// AssetsSuffix is appended to a notebook's stem to name its assets directory.
const AssetsSuffix = "_files"

// Config holds configuration for a batch run.
type Config struct {
	SourceDir string
	OutputDir string
	// Workers bounds the number of notebooks converted at once (default GOMAXPROCS).
	Workers int
	// Placeholder writes an error chapter for notebooks that fail to convert.
	Placeholder bool
	// Frontmatter prefixes each chapter with YAML frontmatter.
	Frontmatter bool
	// Options configure the notebook converter. The file system is always FileSystem.
	Options    []notebookmd.Option
	FileSystem afero.Fs
	Logger     *slog.Logger
}

// Result is the outcome for one notebook.
type Result struct {
	Notebook  string
	Markdown  string
	AssetsDir string
	Assets    []string
	Title     string
	Err       error
}

// Summary holds the outcome of a batch run.
type Summary struct {
	Converted int
	Failed    int
	Results   []Result
}

// Total returns the number of notebooks processed.
func (s Summary) Total() int {
	return s.Converted + s.Failed
}

// HasFailures reports whether any notebook failed to convert.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Runner converts notebook trees.
type Runner struct {
	cfg       Config
	fs        afero.Fs
	logger    *slog.Logger
	converter *notebookmd.Converter
}

// New creates a Runner. Missing file system, logger and worker count get defaults.
func New(cfg Config) *Runner {
	r := &Runner{
		cfg:    cfg,
		fs:     cfg.FileSystem,
		logger: cfg.Logger,
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.cfg.Workers <= 0 {
		r.cfg.Workers = runtime.GOMAXPROCS(0)
	}

	opts := append(append([]notebookmd.Option{}, cfg.Options...), notebookmd.WithFileSystem(r.fs))
	r.converter = notebookmd.New(opts...)
	return r
}

// Discover lists the notebooks under the source directory in lexical order.
func (r *Runner) Discover() ([]string, error) {
	var paths []string
	err := afero.Walk(r.fs, r.cfg.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Jupyter keeps autosaves in .ipynb_checkpoints; never publish them.
			if info.Name() == ".ipynb_checkpoints" {
				return filepath.SkipDir
			}
			return nil
		}
		if notebookmd.Accepts(notebookmd.StreamInfo{
			Extension: strings.ToLower(filepath.Ext(path)),
			Filename:  info.Name(),
			LocalPath: path,
		}) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover notebooks in %s: %w", r.cfg.SourceDir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Run converts every discovered notebook. A failing notebook does not stop the
// others; its error is recorded in its Result. The returned error is non-nil
// only when discovery fails or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	paths, err := r.Discover()
	if err != nil {
		return Summary{}, err
	}

	results := make([]Result, len(paths))
	p := pool.New().WithMaxGoroutines(r.cfg.Workers)
	for i, path := range paths {
		p.Go(func() {
			results[i] = r.convertOne(ctx, path)
		})
	}
	p.Wait()

	summary := Summary{Results: results}
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
		} else {
			summary.Converted++
		}
	}

	r.logger.InfoContext(ctx, "batch finished",
		"source", r.cfg.SourceDir,
		"output", r.cfg.OutputDir,
		"converted", summary.Converted,
		"failed", summary.Failed,
	)
	return summary, ctx.Err()
}

// Paths returns the Markdown file and assets directory used for a notebook.
func (r *Runner) Paths(notebook string) (markdown, assetsDir string) {
	rel, err := filepath.Rel(r.cfg.SourceDir, notebook)
	if err != nil {
		rel = filepath.Base(notebook)
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(r.cfg.OutputDir, stem+".md"),
		filepath.Join(r.cfg.OutputDir, stem+AssetsSuffix)
}

func (r *Runner) convertOne(ctx context.Context, notebook string) Result {
	mdPath, assetsDir := r.Paths(notebook)
	res := Result{Notebook: notebook, Markdown: mdPath, AssetsDir: assetsDir}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if err := r.fs.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		res.Err = fmt.Errorf("create output directory: %w", err)
		r.logFailure(ctx, res)
		return res
	}

	var content string
	converted, err := r.converter.ConvertFile(notebook, assetsDir)
	if err != nil {
		res.Err = err
		r.logFailure(ctx, res)
		if !r.cfg.Placeholder {
			return res
		}
		content = placeholder(notebook, err)
	} else {
		res.Assets = converted.Assets
		res.Title = converted.Title
		content = converted.Markdown
		if r.cfg.Frontmatter {
			content, err = addFrontmatter(converted, notebook)
			if err != nil {
				res.Err = err
				r.logFailure(ctx, res)
				return res
			}
		}
	}

	if err := afero.WriteFile(r.fs, mdPath, []byte(content), 0o644); err != nil {
		res.Err = fmt.Errorf("write %s: %w", mdPath, err)
		r.logFailure(ctx, res)
		return res
	}

	if res.Err == nil {
		r.logger.InfoContext(ctx, "notebook converted",
			"notebook", notebook,
			"markdown", mdPath,
			"assets", len(res.Assets),
		)
	}
	return res
}

func (r *Runner) logFailure(ctx context.Context, res Result) {
	r.logger.ErrorContext(ctx, "notebook conversion failed",
		"notebook", res.Notebook,
		"markdown", res.Markdown,
		"error", res.Err,
	)
}

type frontmatter struct {
	Title  string   `yaml:"title,omitempty"`
	Source string   `yaml:"source"`
	Assets []string `yaml:"assets,omitempty"`
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown content.
func addFrontmatter(res *notebookmd.Result, notebook string) (string, error) {
	fm := frontmatter{
		Title:  res.Title,
		Source: filepath.ToSlash(notebook),
	}
	for _, a := range res.Assets {
		fm.Assets = append(fm.Assets, filepath.ToSlash(a))
	}

	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(out)
	b.WriteString("---\n\n")
	b.WriteString(res.Markdown)
	return b.String(), nil
}

// placeholder is written in place of a chapter whose notebook failed, so the
// published book shows the cause instead of an empty page.
func placeholder(notebook string, err error) string {
	var b strings.Builder
	b.WriteString("<!-- notebookmd: conversion error -->\n\n")
	fmt.Fprintf(&b, "> **Notebook conversion failed** for `%s`\n\n", filepath.ToSlash(notebook))
	fmt.Fprintf(&b, "```\n%v\n```\n\n", err)
	b.WriteString("Please check the original notebook for details.\n")
	return b.String()
}
