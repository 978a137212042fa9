package export

import "strings"

// Block is one paragraph of the paginated export.
type Block struct {
	Text    string
	Heading bool
}

// Blocks splits a summary into one block per non-blank line, in order.
// Markdown heading markers are removed and the block flagged as a heading.
func Blocks(text string) []Block {
	var out []Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b := Block{Text: line}
		if h := strings.TrimLeft(line, "#"); h != line && (h == "" || h[0] == ' ') {
			b.Heading = true
			b.Text = strings.TrimSpace(h)
			if b.Text == "" {
				b.Text = line
				b.Heading = false
			}
		}
		out = append(out, b)
	}
	return out
}
