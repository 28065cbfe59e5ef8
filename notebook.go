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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CellType is the nbformat cell_type discriminator.
type CellType string

const (
	CellMarkdown CellType = "markdown"
	CellCode     CellType = "code"
	CellRaw      CellType = "raw"
)

// OutputType is the nbformat output_type discriminator.
type OutputType string

const (
	OutputStream        OutputType = "stream"
	OutputDisplayData   OutputType = "display_data"
	OutputExecuteResult OutputType = "execute_result"
	OutputError         OutputType = "error"
)

// Notebook is a parsed Jupyter notebook. Only the cells and the language hints in
// the top-level metadata are kept; everything else in the file is ignored.
type Notebook struct {
	Cells    []Cell
	Metadata NotebookMetadata
}

// NotebookMetadata holds the parts of the notebook metadata that rendering can use.
type NotebookMetadata struct {
	KernelLanguage string
	LanguageName   string
}

// Language returns the notebook's code language, preferring the kernel spec.
func (m NotebookMetadata) Language() string {
	if m.KernelLanguage != "" {
		return m.KernelLanguage
	}
	return m.LanguageName
}

// Cell is one of *MarkdownCell, *CodeCell or *RawCell.
type Cell interface {
	CellType() CellType
	isCell()
}

// MarkdownCell holds Markdown source.
type MarkdownCell struct {
	Source   Text
	Metadata json.RawMessage
}

// CodeCell holds source code and its recorded outputs.
type CodeCell struct {
	Source         Text
	Outputs        []Output
	ExecutionCount *int
	Metadata       json.RawMessage
}

// RawCell holds source that is passed through untouched.
type RawCell struct {
	Source   Text
	Metadata json.RawMessage
}

func (*MarkdownCell) CellType() CellType { return CellMarkdown }
func (*CodeCell) CellType() CellType     { return CellCode }
func (*RawCell) CellType() CellType      { return CellRaw }

func (*MarkdownCell) isCell() {}
func (*CodeCell) isCell()     {}
func (*RawCell) isCell()      {}

// Output is one of *StreamOutput, *DisplayDataOutput, *ExecuteResultOutput or *ErrorOutput.
type Output interface {
	OutputType() OutputType
	isOutput()
}

// StreamOutput is text written to stdout or stderr.
type StreamOutput struct {
	Name string
	Text Text
}

// DisplayDataOutput is a rich display payload.
type DisplayDataOutput struct {
	Data     MIMEBundle
	Metadata json.RawMessage
}

// ExecuteResultOutput is the value of the last expression of a cell.
type ExecuteResultOutput struct {
	Data           MIMEBundle
	Metadata       json.RawMessage
	ExecutionCount *int
}

// ErrorOutput is an exception raised while executing a cell.
type ErrorOutput struct {
	EName     string
	EValue    string
	Traceback Text
}

func (*StreamOutput) OutputType() OutputType        { return OutputStream }
func (*DisplayDataOutput) OutputType() OutputType   { return OutputDisplayData }
func (*ExecuteResultOutput) OutputType() OutputType { return OutputExecuteResult }
func (*ErrorOutput) OutputType() OutputType         { return OutputError }

func (*StreamOutput) isOutput()        {}
func (*DisplayDataOutput) isOutput()   {}
func (*ExecuteResultOutput) isOutput() {}
func (*ErrorOutput) isOutput()         {}

// ParseNotebook decodes notebook JSON. Any failure is returned as a *ParseError.
func ParseNotebook(data []byte) (*Notebook, error) {
	nb, err := parseNotebook(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return nb, nil
}

type rawNotebook struct {
	Cells    *[]json.RawMessage `json:"cells"`
	Metadata json.RawMessage    `json:"metadata"`
}

type rawCell struct {
	CellType       *string            `json:"cell_type"`
	Source         *Text              `json:"source"`
	Outputs        *[]json.RawMessage `json:"outputs"`
	ExecutionCount *int               `json:"execution_count"`
	Metadata       json.RawMessage    `json:"metadata"`
}

type rawOutput struct {
	OutputType     *string         `json:"output_type"`
	Name           *string         `json:"name"`
	Text           *Text           `json:"text"`
	Data           json.RawMessage `json:"data"`
	Metadata       json.RawMessage `json:"metadata"`
	ExecutionCount *int            `json:"execution_count"`
	EName          *string         `json:"ename"`
	EValue         *string         `json:"evalue"`
	Traceback      *Text           `json:"traceback"`
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}

func parseNotebook(data []byte) (*Notebook, error) {
	var raw rawNotebook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Cells == nil {
		return nil, missingField("cells")
	}

	nb := &Notebook{
		Cells:    make([]Cell, 0, len(*raw.Cells)),
		Metadata: parseMetadata(raw.Metadata),
	}
	for i, rc := range *raw.Cells {
		cell, err := parseCell(rc)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		nb.Cells = append(nb.Cells, cell)
	}
	return nb, nil
}

// parseMetadata is best-effort: a malformed metadata object never fails the parse.
func parseMetadata(raw json.RawMessage) NotebookMetadata {
	var m struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	return NotebookMetadata{
		KernelLanguage: m.KernelSpec.Language,
		LanguageName:   m.LanguageInfo.Name,
	}
}

func parseCell(data json.RawMessage) (Cell, error) {
	var rc rawCell
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, err
	}
	if rc.CellType == nil {
		return nil, missingField("cell_type")
	}
	if rc.Source == nil {
		return nil, missingField("source")
	}

	switch CellType(*rc.CellType) {
	case CellMarkdown:
		return &MarkdownCell{Source: *rc.Source, Metadata: rc.Metadata}, nil
	case CellRaw:
		return &RawCell{Source: *rc.Source, Metadata: rc.Metadata}, nil
	case CellCode:
		if rc.Outputs == nil {
			return nil, missingField("outputs")
		}
		outputs := make([]Output, 0, len(*rc.Outputs))
		for i, ro := range *rc.Outputs {
			out, err := parseOutput(ro)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			outputs = append(outputs, out)
		}
		return &CodeCell{
			Source:         *rc.Source,
			Outputs:        outputs,
			ExecutionCount: rc.ExecutionCount,
			Metadata:       rc.Metadata,
		}, nil
	}
	return nil, fmt.Errorf("unknown cell_type %q", *rc.CellType)
}

func parseOutput(data json.RawMessage) (Output, error) {
	var ro rawOutput
	if err := json.Unmarshal(data, &ro); err != nil {
		return nil, err
	}
	if ro.OutputType == nil {
		return nil, missingField("output_type")
	}

	switch OutputType(*ro.OutputType) {
	case OutputStream:
		if ro.Text == nil {
			return nil, missingField("text")
		}
		out := &StreamOutput{Text: *ro.Text}
		if ro.Name != nil {
			out.Name = *ro.Name
		}
		return out, nil

	case OutputDisplayData:
		bundle, err := parseBundle(ro.Data)
		if err != nil {
			return nil, err
		}
		return &DisplayDataOutput{Data: bundle, Metadata: ro.Metadata}, nil

	case OutputExecuteResult:
		bundle, err := parseBundle(ro.Data)
		if err != nil {
			return nil, err
		}
		return &ExecuteResultOutput{
			Data:           bundle,
			Metadata:       ro.Metadata,
			ExecutionCount: ro.ExecutionCount,
		}, nil

	case OutputError:
		switch {
		case ro.EName == nil:
			return nil, missingField("ename")
		case ro.EValue == nil:
			return nil, missingField("evalue")
		case ro.Traceback == nil:
			return nil, missingField("traceback")
		}
		return &ErrorOutput{EName: *ro.EName, EValue: *ro.EValue, Traceback: *ro.Traceback}, nil
	}
	return nil, fmt.Errorf("unknown output_type %q", *ro.OutputType)
}

var errBundleNotObject = errors.New(`field "data" must be an object`)

// parseBundle keeps numbers as json.Number so they can be rendered from their literal.
func parseBundle(raw json.RawMessage) (MIMEBundle, error) {
	if len(raw) == 0 {
		return nil, missingField("data")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var bundle map[string]any
	if err := dec.Decode(&bundle); err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, errBundleNotObject
	}
	return bundle, nil
}
