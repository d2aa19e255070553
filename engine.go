package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

const utf8Label = "utf-8"

// encodingSampleSize is how many bytes are fed to the statistical
// detector.
const encodingSampleSize = 1000

// charsetAliases maps detector charset names that htmlindex does not
// know under the same spelling.
var charsetAliases = map[string]string{
	"gb-18030": "gb18030",
	"ascii":    utf8Label,
	"us-ascii": utf8Label,
}

// FilterEngine owns the loaded document and its encoding. One engine
// serves one caller; all operations are synchronous.
type FilterEngine struct {
	doc *Document
}

func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

// DetectEncoding reads up to 1000 bytes of the file and returns a
// best-guess encoding label. An error means detection found nothing
// usable and the caller should fall back to UTF-8.
func DetectEncoding(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, encodingSampleSize)
	n, _ := f.Read(buf)
	if n == 0 {
		return "", fmt.Errorf("detect encoding %s: empty sample", path)
	}

	result, err := chardet.NewTextDetector().DetectBest(buf[:n])
	if err != nil {
		return "", fmt.Errorf("detect encoding %s: %w", path, err)
	}
	if result.Charset == "" {
		return "", fmt.Errorf("detect encoding %s: no charset", path)
	}

	label := strings.ToLower(result.Charset)
	if alias, ok := charsetAliases[label]; ok {
		label = alias
	}
	return label, nil
}

// Load reads the file at path, decoding it with the detected encoding
// and falling back to UTF-8 when that fails. On success the engine's
// current document is replaced; a failed load leaves it untouched.
func (e *FilterEngine) Load(path string) (*Document, error) {
	label, err := DetectEncoding(path)
	if err != nil {
		label = utf8Label
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text, label, err := decodeWithFallback(data, label)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	doc := &Document{
		Lines:    splitLines(text),
		Encoding: label,
		Path:     path,
	}
	e.doc = doc
	return doc, nil
}

// Filter returns the lines of doc whose lowercase form contains the
// lowercase query. An empty query returns all lines. Order is always
// preserved.
func (e *FilterEngine) Filter(doc *Document, query string) []string {
	if doc == nil {
		return nil
	}
	if query == "" {
		return doc.Lines
	}

	q := strings.ToLower(query)
	matched := []string{}
	for _, line := range doc.Lines {
		if strings.Contains(strings.ToLower(line), q) {
			matched = append(matched, line)
		}
	}
	return matched
}

// Save writes lines to path using the given encoding label. Lines are
// joined as-is: whatever terminators they carry end up on disk
// unchanged.
func (e *FilterEngine) Save(path string, lines []string, label string) error {
	data, err := encodeText(strings.Join(lines, ""), label)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Close discards the current document. No file I/O happens.
func (e *FilterEngine) Close() {
	e.doc = nil
}

// Document returns the currently loaded document, nil when none.
func (e *FilterEngine) Document() *Document {
	return e.doc
}

// Encoding returns the current document's encoding label, "" when no
// document is loaded.
func (e *FilterEngine) Encoding() string {
	if e.doc == nil {
		return ""
	}
	return e.doc.Encoding
}

// decodeWithFallback tries the given label first and UTF-8 second.
// It returns the decoded text and the label that actually worked.
func decodeWithFallback(data []byte, label string) (string, string, error) {
	text, err := decodeText(data, label)
	if err == nil {
		return text, label, nil
	}

	if label != utf8Label {
		if text, uerr := decodeText(data, utf8Label); uerr == nil {
			return text, utf8Label, nil
		}
	}
	return "", "", err
}

// decodeText decodes data with the named encoding. A decode counts as
// failed when the transformer errors or when it introduces replacement
// runes that were not in the source, since x/text charmap decoders map
// undefined bytes to U+FFFD instead of erroring.
func decodeText(data []byte, label string) (string, error) {
	if label == utf8Label {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid UTF-8 byte sequence")
		}
		return string(data), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", label, err)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", label, err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) && !bytes.ContainsRune(data, utf8.RuneError) {
		return "", fmt.Errorf("decode as %s: undefined byte in input", label)
	}
	return string(decoded), nil
}

// encodeText encodes text with the named encoding.
func encodeText(text string, label string) ([]byte, error) {
	if label == "" || label == utf8Label {
		return []byte(text), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}

	encoded, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode as %s: %w", label, err)
	}
	return encoded, nil
}

// splitLines splits text after every '\n', keeping the terminator on
// the line. A final chunk without a newline becomes the last line, so
// joining the result reproduces text exactly. CR bytes are left alone:
// a "\r\n" terminator survives as read.
func splitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return lines
}
