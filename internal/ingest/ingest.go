// Package ingest turns an uploaded PDF into plain text.
//
// Pages are read in order and every page that yields text contributes that
// text followed by a newline. Pages that yield nothing (image-only or blank
// pages) are skipped without a placeholder, but still count toward Pages.
package ingest

import (
	"errors"
	"fmt"
	"strings"
)

const (
	BackendLedongthuc = "ledongthuc"
	BackendRSC        = "rsc"
)

// ErrEmptyInput is wrapped in an ExtractionError when no bytes were uploaded.
var ErrEmptyInput = errors.New("empty document")

// ExtractionError reports a byte stream that is not a readable PDF.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	if e == nil || e.Err == nil {
		return "pdf extraction failed"
	}
	return "pdf extraction failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Result is the text of a whole document.
type Result struct {
	Text  string
	Pages int
}

type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type opener func(raw []byte) (pageSource, error)

// Extractor reads PDFs with one of the supported parsing backends.
type Extractor struct {
	backend string
	open    opener
}

func New(backend string) (*Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendLedongthuc:
		return &Extractor{backend: BackendLedongthuc, open: openLedongthuc}, nil
	case BackendRSC:
		return &Extractor{backend: BackendRSC, open: openRSC}, nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", backend)
	}
}

func (e *Extractor) Backend() string { return e.backend }

// Extract parses raw and returns its text and page count. Any failure,
// including a panic inside the parser, is returned as *ExtractionError.
func (e *Extractor) Extract(raw []byte) (res Result, err error) {
	if len(raw) == 0 {
		return Result{}, &ExtractionError{Err: ErrEmptyInput}
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &ExtractionError{Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	doc, err := e.open(raw)
	if err != nil {
		return Result{}, &ExtractionError{Err: err}
	}
	return collect(doc)
}

func collect(doc pageSource) (Result, error) {
	n := doc.NumPage()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		text, err := doc.PageText(i)
		if err != nil {
			return Result{}, &ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return Result{Text: b.String(), Pages: n}, nil
}
