// Package export turns a generated summary into downloadable files.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Format string

const (
	TXT  Format = "txt"
	MD   Format = "md"
	HTML Format = "html"
	PDF  Format = "pdf"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{PDF, TXT, MD, HTML}

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case TXT, MD, HTML, PDF:
		return f, nil
	case "markdown":
		return MD, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case TXT:
		return "text/plain; charset=utf-8"
	case MD:
		return "text/markdown; charset=utf-8"
	case HTML:
		return "text/html; charset=utf-8"
	case PDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Render encodes the summary text in the given format. title is only used
// where the format has a place for it.
func Render(title, text string, f Format) ([]byte, error) {
	switch f {
	case TXT, MD:
		return []byte(text), nil
	case HTML:
		return renderHTML(title, text)
	case PDF:
		return renderPDF(title, text)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

var unsafeName = regexp.MustCompile(`[\x00-\x1f/\\:*?"<>|]+`)

// FileName is the download name of a summary: <title>_summary.<ext>.
func FileName(title string, f Format) string {
	t := strings.TrimSpace(unsafeName.ReplaceAllString(title, "_"))
	if t == "" {
		t = "course"
	}
	return t + "_summary." + string(f)
}
