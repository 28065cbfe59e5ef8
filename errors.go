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
	"errors"
	"fmt"

	"github.com/nicholasgasior/notebookmd/internal/assets"
)

// ParseError is returned when the notebook cannot be read or does not have the
// expected cell and output structure.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse notebook: %v", e.Err)
	}
	return fmt.Sprintf("parse notebook %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AssetIOError is returned when an asset cannot be decoded or written, or when
// the assets directory cannot be created.
type AssetIOError struct {
	Source string
	Op     string
	Path   string
	Err    error
}

func (e *AssetIOError) Error() string {
	msg := fmt.Sprintf("asset %s %s: %v", e.Op, e.Path, e.Err)
	if e.Source != "" {
		msg += fmt.Sprintf(" (notebook: %s)", e.Source)
	}
	return msg
}

func (e *AssetIOError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether the error is a ParseError.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsAssetIOError reports whether the error is an AssetIOError.
func IsAssetIOError(err error) bool {
	var target *AssetIOError
	return errors.As(err, &target)
}

func assetError(source string, err error) error {
	var ae *assets.Error
	if errors.As(err, &ae) {
		return &AssetIOError{Source: source, Op: ae.Op, Path: ae.Path, Err: ae.Err}
	}
	return &AssetIOError{Source: source, Op: "emit", Err: err}
}
