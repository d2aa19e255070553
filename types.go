package main

import "fmt"

type Config struct {
	Path   string
	Filter string
	Output string
	Live   bool
}

// Document holds the lines of a loaded text file. Each line keeps its
// terminator exactly as read from disk, so joining Lines reproduces the
// decoded file verbatim.
type Document struct {
	Lines    []string
	Encoding string
	Path     string
}

// DecodeError reports that a file could not be decoded with either the
// detected encoding or the UTF-8 fallback.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed save.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Input fields
type InputField int

const (
	filterInput InputField = iota
	openInput
	saveInput
)

// Messages for TUI
type documentLoadedMsg struct {
	doc *Document
}

type documentSavedMsg struct {
	path  string
	lines int
}

type errorMsg struct {
	err error
}
