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

// Package assets turns binary notebook outputs into files or data URIs.
package assets

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Error reports a failed decode, directory creation or write.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store emits assets for a single conversion. File names come from a counter
// that starts at zero and is shared by every output of the conversion, so a
// Store must not be reused across conversions or shared between goroutines.
type Store struct {
	fs     afero.Fs
	dir    string
	embed  bool
	prefix string

	counter  int
	written  []string
	prepared bool
}

// New returns a Store writing into dir on fs. When embed is true nothing is
// written and every asset becomes a data URI.
func New(fs afero.Fs, dir string, embed bool) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{
		fs:     fs,
		dir:    dir,
		embed:  embed,
		prefix: dirBaseName(dir),
	}
}

// Prepare creates the assets directory. It runs at most once and does nothing
// when embedding. An empty dir means the working directory, which already exists.
func (s *Store) Prepare() error {
	if s.embed || s.prepared {
		return nil
	}
	s.prepared = true
	if s.dir == "" {
		return nil
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return &Error{Op: "mkdir", Path: s.dir, Err: err}
	}
	return nil
}

// EmitBase64 handles a payload that is already base64 encoded (PNG, JPEG).
// It returns the reference to place in the Markdown image link.
func (s *Store) EmitBase64(mimeType, payload string) (string, error) {
	if s.embed {
		return dataURI(mimeType, stripLineBreaks(payload)), nil
	}

	name := s.nextName(mimeType)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", &Error{Op: "decode", Path: filepath.Join(s.dir, name), Err: err}
	}
	return s.write(name, data)
}

// EmitText handles a payload stored as literal text (SVG markup).
func (s *Store) EmitText(mimeType, payload string) (string, error) {
	if s.embed {
		return dataURI(mimeType, base64.StdEncoding.EncodeToString([]byte(payload))), nil
	}
	return s.write(s.nextName(mimeType), []byte(payload))
}

// Written lists the files written so far, in emission order.
func (s *Store) Written() []string {
	return s.written
}

func (s *Store) nextName(mimeType string) string {
	return fmt.Sprintf("output_%03d%s", s.counter, Extension(mimeType))
}

func (s *Store) write(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", &Error{Op: "write", Path: path, Err: err}
	}
	s.counter++
	s.written = append(s.written, path)

	if s.prefix == "" {
		return name, nil
	}
	return s.prefix + "/" + name, nil
}

var fallbackExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
}

// Extension returns the file extension, with its dot, used for mimeType.
func Extension(mimeType string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if ext, ok := fallbackExtensions[mimeType]; ok {
		return ext
	}
	return ".bin"
}

func dataURI(mimeType, b64 string) string {
	return "data:" + mimeType + ";base64," + b64
}

func stripLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// dirBaseName returns the final named component of dir, or "" when there is
// none ("", ".", "/", or a path ending in "..").
func dirBaseName(dir string) string {
	var last string
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == "" || part == "." {
			continue
		}
		last = part
	}
	if last == ".." {
		return ""
	}
	return last
}
