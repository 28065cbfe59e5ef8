package notebookmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotebookTitle(t *testing.T) {
	tests := []struct {
		name  string
		cells []Cell
		want  string
	}{
		{
			name:  "atx heading",
			cells: []Cell{&MarkdownCell{Source: SingleText("# Linear Models\n\nIntro")}},
			want:  "Linear Models",
		},
		{
			name:  "setext heading with emphasis",
			cells: []Cell{&MarkdownCell{Source: MultiText("Data *Cleaning*\n", "===\n")}},
			want:  "Data Cleaning",
		},
		{
			name: "skips lower levels and code cells",
			cells: []Cell{
				&CodeCell{Source: SingleText("# not a title")},
				&MarkdownCell{Source: SingleText("## Section")},
				&MarkdownCell{Source: SingleText("text\n\n# Chapter 2")},
			},
			want: "Chapter 2",
		},
		{
			name:  "heading inside fenced code is ignored",
			cells: []Cell{&MarkdownCell{Source: SingleText("```\n# comment\n```")}},
			want:  "",
		},
		{
			name:  "raw cells are not markdown",
			cells: []Cell{&RawCell{Source: SingleText("# Raw")}},
			want:  "",
		},
		{
			name: "no cells",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notebookTitle(&Notebook{Cells: tt.cells}))
		})
	}
}
