package ingest

import (
	"bytes"
	"math"
	"strings"

	rpdf "rsc.io/pdf"
)

type rscDoc struct {
	r *rpdf.Reader
}

func openRSC(raw []byte) (pageSource, error) {
	r, err := rpdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	return rscDoc{r: r}, nil
}

func (d rscDoc) NumPage() int { return d.r.NumPage() }

func (d rscDoc) PageText(n int) (string, error) {
	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return joinRuns(p.Content().Text), nil
}

// joinRuns rebuilds reading text from positioned glyph runs: a baseline
// change starts a new line, a gap wider than a fraction of the font size
// becomes a space.
func joinRuns(runs []rpdf.Text) string {
	var b strings.Builder
	var prev *rpdf.Text
	for i := range runs {
		t := runs[i]
		if t.S == "" {
			continue
		}
		if prev != nil {
			size := math.Max(prev.FontSize, 1)
			switch {
			case math.Abs(t.Y-prev.Y) > size*0.5:
				b.WriteString("\n")
			case t.X-(prev.X+prev.W) > size*0.15:
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		prev = &runs[i]
	}
	return strings.TrimRight(b.String(), " \n")
}
