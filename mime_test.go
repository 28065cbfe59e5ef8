package notebookmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIMEBundle_Text(t *testing.T) {
	bundle := MIMEBundle{
		MIMEPlain:        []any{"a", "b"},
		MIMEHTML:         nil,
		MIMEMarkdown:     "# md",
		"application/x":  json.Number("7"),
		"application/y":  json.Number("1.50"),
		"application/z":  json.Number("1e3"),
		"application/b":  false,
		"application/f":  2.25,
		"application/ss": []string{"p", "q"},
		"application/o":  map[string]any{"z": []any{json.Number("1")}, "a": "<&>"},
		"application/e":  []any{},
		"application/n":  []any{nil, json.Number("3"), map[string]any{"k": nil}},
	}

	tests := []struct {
		mime string
		want string
		ok   bool
	}{
		{MIMEPlain, "ab", true},
		{MIMEHTML, "", false},
		{MIMEMarkdown, "# md", true},
		{"application/missing", "", false},
		{"application/x", "7", true},
		{"application/y", "1.5", true},
		{"application/z", "1000.0", true},
		{"application/b", "false", true},
		{"application/f", "2.25", true},
		{"application/ss", "pq", true},
		{"application/o", `{"a":"<&>","z":[1]}`, true},
		{"application/e", "", true},
		{"application/n", `3{"k":null}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			got, ok := bundle.Text(tt.mime)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberText(t *testing.T) {
	tests := map[string]string{
		"0":                       "0",
		"-12":                     "-12",
		"18446744073709551615":    "18446744073709551615",
		"3.0":                     "3.0",
		"1.0":                     "1.0",
		"-0.0":                    "-0.0",
		"0.1":                     "0.1",
		"2.5e-3":                  "0.0025",
		"1.234e-7":                "1.234e-7",
		"1e3":                     "1000.0",
		"1e16":                    "1e16",
		"1e300":                   "1e300",
		"6.02214076e23":           "6.02214076e23",
		"99999999999999999999":    "1e20",
		"10000000000000000000000": "1e22",
	}
	for in, want := range tests {
		assert.Equal(t, want, numberText(json.Number(in)), in)
	}
}
