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
	"math"
	"strconv"
	"strings"
)

// MIME types understood by the output renderer.
const (
	MIMEImagePNG  = "image/png"
	MIMEImageJPEG = "image/jpeg"
	MIMEImageSVG  = "image/svg+xml"
	MIMEMarkdown  = "text/markdown"
	MIMEPlain     = "text/plain"
	MIMEHTML      = "text/html"
)

// MIMEBundle maps MIME types to alternate representations of one output.
type MIMEBundle map[string]any

// Text returns the textual form of the value stored under mimeType.
// ok is false when the key is absent or its value is null.
func (b MIMEBundle) Text(mimeType string) (string, bool) {
	v, found := b[mimeType]
	if !found {
		return "", false
	}
	return resolveText(v)
}

// resolveText flattens a decoded JSON value into text. Arrays concatenate their
// resolvable elements, objects are re-encoded as compact JSON and null yields nothing.
func resolveText(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return numberText(v), true
	case float64:
		return floatText(v), true
	case bool:
		return strconv.FormatBool(v), true
	case []any:
		var b strings.Builder
		for _, e := range v {
			if s, ok := resolveText(e); ok {
				b.WriteString(s)
			}
		}
		return b.String(), true
	case []string:
		return strings.Join(v, ""), true
	}

	s, err := compactJSON(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// numberText renders a JSON number literal. Integers that fit in 64 bits keep
// their digits; everything else is printed as the shortest float64 form with a
// ".0" on whole values and an exponent outside 1e-5..1e16.
func numberText(n json.Number) string {
	s := n.String()
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return floatText(f)
}

func floatText(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}

	var b strings.Builder
	if math.Signbit(f) {
		b.WriteByte('-')
		f = -f
	}

	// Shortest round-trip digits: "d.ddde±XX".
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mant, ".", "", 1)
	e10, _ := strconv.Atoi(exp)

	length := len(digits)
	k := e10 - (length - 1) // value = digits * 10^k
	kk := e10 + 1           // 10^(kk-1) <= value < 10^kk

	switch {
	case k >= 0 && kk <= 16:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", k))
		b.WriteString(".0")
	case kk > 0 && kk <= 16:
		b.WriteString(digits[:kk])
		b.WriteByte('.')
		b.WriteString(digits[kk:])
	case kk > -5 && kk <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -kk))
		b.WriteString(digits)
	case length == 1:
		b.WriteString(digits)
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(kk - 1))
	default:
		b.WriteString(digits[:1])
		b.WriteByte('.')
		b.WriteString(digits[1:])
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(kk - 1))
	}
	return b.String()
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
