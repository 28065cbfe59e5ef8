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

package notebookmd

import (
	"strings"

	"github.com/nicholasgasior/notebookmd/internal/assets"
)

// renderer appends the Markdown for each cell to a single buffer.
type renderer struct {
	md             *strings.Builder
	assets         *assets.Store
	language       string
	htmlToMarkdown bool
}

type mimeHandler struct {
	mimeType string
	render   func(r *renderer, mimeType, payload string) error
}

// mimeHandlers is consulted in order; the first key whose value resolves to
// text is rendered and the rest of the bundle is ignored.
var mimeHandlers = []mimeHandler{
	{MIMEImagePNG, (*renderer).renderBinaryImage},
	{MIMEImageJPEG, (*renderer).renderBinaryImage},
	{MIMEImageSVG, (*renderer).renderSVG},
	{MIMEMarkdown, (*renderer).renderVerbatim},
	{MIMEPlain, (*renderer).renderPlain},
	{MIMEHTML, (*renderer).renderHTML},
}

func (r *renderer) renderCell(cell Cell) error {
	switch c := cell.(type) {
	case *MarkdownCell:
		r.md.WriteString(c.Source.String())
		r.md.WriteString("\n\n")
	case *RawCell:
		r.md.WriteString(c.Source.String())
		r.md.WriteString("\n\n")
	case *CodeCell:
		r.fence(r.language, c.Source.String())
		for _, out := range c.Outputs {
			if err := r.renderOutput(out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) renderOutput(out Output) error {
	switch o := out.(type) {
	case *StreamOutput:
		r.fence("", o.Text.String())
	case *DisplayDataOutput:
		return r.renderBundle(o.Data)
	case *ExecuteResultOutput:
		return r.renderBundle(o.Data)
	case *ErrorOutput:
		r.md.WriteString("```error\n")
		r.md.WriteString(o.EName)
		r.md.WriteString(": ")
		r.md.WriteString(o.EValue)
		r.md.WriteString("\n")
		r.md.WriteString(o.Traceback.String())
		r.md.WriteString("\n```\n\n")
	}
	return nil
}

func (r *renderer) renderBundle(data MIMEBundle) error {
	for _, h := range mimeHandlers {
		if payload, ok := data.Text(h.mimeType); ok {
			return h.render(r, h.mimeType, payload)
		}
	}
	return nil
}

func (r *renderer) renderBinaryImage(mimeType, payload string) error {
	ref, err := r.assets.EmitBase64(mimeType, payload)
	if err != nil {
		return err
	}
	r.image("output image", ref)
	return nil
}

func (r *renderer) renderSVG(mimeType, payload string) error {
	ref, err := r.assets.EmitText(mimeType, payload)
	if err != nil {
		return err
	}
	r.image("output svg", ref)
	return nil
}

func (r *renderer) renderVerbatim(_, payload string) error {
	r.md.WriteString(payload)
	r.md.WriteString("\n\n")
	return nil
}

func (r *renderer) renderPlain(_, payload string) error {
	r.fence("", payload)
	return nil
}

func (r *renderer) renderHTML(mimeType, payload string) error {
	if r.htmlToMarkdown {
		if md, err := convertHTMLToMarkdown(payload); err == nil {
			return r.renderVerbatim(mimeType, md)
		}
	}
	r.fence("html", payload)
	return nil
}

func (r *renderer) fence(info, body string) {
	r.md.WriteString("```")
	r.md.WriteString(info)
	r.md.WriteString("\n")
	r.md.WriteString(body)
	r.md.WriteString("\n```\n\n")
}

func (r *renderer) image(alt, ref string) {
	r.md.WriteString("![")
	r.md.WriteString(alt)
	r.md.WriteString("](")
	r.md.WriteString(ref)
	r.md.WriteString(")\n\n")
}

// estimateSize approximates the rendered length of nb for buffer pre-sizing.
func estimateSize(nb *Notebook) int {
	n := 0
	for _, cell := range nb.Cells {
		switch c := cell.(type) {
		case *MarkdownCell:
			n += c.Source.Len() + 4
		case *RawCell:
			n += c.Source.Len() + 4
		case *CodeCell:
			n += c.Source.Len() + 12
			for _, out := range c.Outputs {
				n += estimateOutputSize(out)
			}
		}
	}
	return n
}

func estimateOutputSize(out Output) int {
	switch o := out.(type) {
	case *StreamOutput:
		return o.Text.Len() + 8
	case *DisplayDataOutput:
		return estimateBundleSize(o.Data)
	case *ExecuteResultOutput:
		return estimateBundleSize(o.Data)
	case *ErrorOutput:
		return len(o.EName) + len(o.EValue) + o.Traceback.Len() + 16
	}
	return 0
}

// estimateBundleSize only looks at string values so that sizing never allocates.
func estimateBundleSize(data MIMEBundle) int {
	for _, key := range []string{MIMEMarkdown, MIMEPlain, MIMEImagePNG} {
		if s, ok := data[key].(string); ok {
			return len(s) + 32
		}
	}
	return 16
}
