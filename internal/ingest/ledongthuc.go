package ingest

import (
	"bytes"

	lpdf "github.com/ledongthuc/pdf"
)

type ledongthucDoc struct {
	r *lpdf.Reader
}

func openLedongthuc(raw []byte) (pageSource, error) {
	r, err := lpdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	return ledongthucDoc{r: r}, nil
}

func (d ledongthucDoc) NumPage() int { return d.r.NumPage() }

func (d ledongthucDoc) PageText(n int) (string, error) {
	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
