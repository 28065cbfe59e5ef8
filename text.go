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
	"strings"
)

// Text is a notebook text field. nbformat allows these to be written either as a
// single string or as an array of fragments that are concatenated in order.
type Text struct {
	parts []string
}

// SingleText returns a Text holding one string.
func SingleText(s string) Text {
	return Text{parts: []string{s}}
}

// MultiText returns a Text holding ordered fragments.
func MultiText(parts ...string) Text {
	return Text{parts: parts}
}

// String concatenates all fragments with no separator.
func (t Text) String() string {
	switch len(t.parts) {
	case 0:
		return ""
	case 1:
		return t.parts[0]
	}
	return strings.Join(t.parts, "")
}

// Len returns the byte length of String() without building it.
func (t Text) Len() int {
	n := 0
	for _, p := range t.parts {
		n += len(p)
	}
	return n
}

var errNotText = errors.New("expected a string or an array of strings")

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errNotText
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = SingleText(s)
		return nil
	case '[':
		// Pointers tell a null element apart from an empty string.
		var elems []*string
		if err := json.Unmarshal(data, &elems); err != nil {
			return errNotText
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e == nil {
				return errNotText
			}
			parts[i] = *e
		}
		*t = MultiText(parts...)
		return nil
	}
	return errNotText
}
