/*
Copyright 2024 The aurochs Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package command implements the typed result envelope returned by every
// command style entry point. Internal core failures are mapped to coded
// failures at this boundary.
package command

import (
	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/pdf/model"
	"github.com/trkbt10/aurochs/pkg/pptx"
	"github.com/trkbt10/aurochs/pkg/xlsx"
)

// Code is a stable failure code.
type Code string

// The failure codes surfaced to callers.
const (
	CodeFileNotFound    Code = "FILE_NOT_FOUND"
	CodeInvalidJSON     Code = "INVALID_JSON"
	CodeParseError      Code = "PARSE_ERROR"
	CodeBuildError      Code = "BUILD_ERROR"
	CodePatchError      Code = "PATCH_ERROR"
	CodeVerifyError     Code = "VERIFY_ERROR"
	CodeSheetNotFound   Code = "SHEET_NOT_FOUND"
	CodeNoTestCases     Code = "NO_TEST_CASES"
	CodeNoMatchingTests Code = "NO_MATCHING_TESTS"
)

// Result is the envelope of a command style operation.
type Result[T any] struct {
	OK      bool   `json:"ok"`
	Value   T      `json:"value,omitempty"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Fail wraps a coded failure.
func Fail[T any](code Code, err error) Result[T] {
	r := Result[T]{Code: code}
	if err != nil {
		r.Message = err.Error()
		if cause := errors.Cause(err); cause != nil && cause != err {
			r.Details = cause.Error()
		}
	}
	return r
}

// FailMsg wraps a coded failure with an explicit message.
func FailMsg[T any](code Code, message string) Result[T] {
	return Result[T]{Code: code, Message: message}
}

// CodeForError maps well known core errors onto their boundary code.
func CodeForError(err error) Code {
	cause := errors.Cause(err)

	switch {
	case errors.Is(cause, xlsx.ErrSheetNotFound):
		return CodeSheetNotFound
	case errors.Is(cause, xlsx.ErrInvalidCellRef),
		errors.Is(cause, xlsx.ErrInvalidRange),
		errors.Is(cause, xlsx.ErrInvalidErrorValue),
		errors.Is(cause, xlsx.ErrDuplicateSheetName),
		errors.Is(cause, xlsx.ErrInvalidColor):
		return CodeBuildError
	case errors.Is(cause, pptx.ErrDiagramNotFound),
		errors.Is(cause, pptx.ErrNodeNotFound):
		return CodePatchError
	case errors.Is(cause, model.ErrEncrypted),
		errors.Is(cause, model.ErrAuthRequired):
		return CodeParseError
	}

	return CodeParseError
}

// Wrap converts an error into a failed result with the mapped code,
// or wraps the value on success.
func Wrap[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](CodeForError(err), err)
	}
	return OK(v)
}
