package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders summary markdown to an HTML fragment. Raw HTML in the
// source is not passed through.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

var page = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} summary</title>
<style>body{font-family:sans-serif;max-width:46rem;margin:2rem auto;line-height:1.5;padding:0 1rem}</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))

func renderHTML(title, text string) ([]byte, error) {
	body, err := Markdown(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, body})
	if err != nil {
		return nil, fmt.Errorf("render html page: %w", err)
	}
	return buf.Bytes(), nil
}
