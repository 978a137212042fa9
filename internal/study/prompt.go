package study

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultCharBudget is how much extracted text goes into a summary prompt.
const DefaultCharBudget = 6000

const DefaultSummaryTemplate = `Write a PEDAGOGICAL SUMMARY of this course for a {{.Level}} student.

COURSE CONTENT:
{{.Content}}

STRICT FORMAT:
## 1. Key Concepts
- Concept 1: simple explanation
- Concept 2: simple explanation

## 2. Essential Points
1. Critical point 1
2. Critical point 2

## 3. Practical Examples
- Application 1
- Application 2

## 4. Vocabulary
- Term 1: definition
- Term 2: definition

**Be CLEAR and PEDAGOGICAL.**`

const DefaultChatTemplate = `COURSE: {{.Title}}
SUMMARY:
{{.Summary}}

QUESTION: {{.Question}}

Answer PEDAGOGICALLY.`

// Prompts renders the summary and chat prompts.
type Prompts struct {
	summary *template.Template
	chat    *template.Template
	budget  int
	labels  map[Level]string
}

type summaryData struct {
	Level   string
	Title   string
	Content string
}

type chatData struct {
	Title    string
	Summary  string
	Question string
}

// NewPrompts parses the templates; empty strings select the defaults and a
// non-positive budget selects DefaultCharBudget. labels overrides the wording
// a level takes inside the summary prompt; missing levels keep Level.Label.
func NewPrompts(summaryTmpl, chatTmpl string, budget int, labels map[Level]string) (*Prompts, error) {
	if strings.TrimSpace(summaryTmpl) == "" {
		summaryTmpl = DefaultSummaryTemplate
	}
	if strings.TrimSpace(chatTmpl) == "" {
		chatTmpl = DefaultChatTemplate
	}
	if budget <= 0 {
		budget = DefaultCharBudget
	}
	names := make(map[Level]string, len(labels))
	for l, name := range labels {
		if !l.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, string(l))
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty label for level %q", string(l))
		}
		names[l] = name
	}
	st, err := template.New("summary").Option("missingkey=error").Parse(summaryTmpl)
	if err != nil {
		return nil, fmt.Errorf("summary template: %w", err)
	}
	ct, err := template.New("chat").Option("missingkey=error").Parse(chatTmpl)
	if err != nil {
		return nil, fmt.Errorf("chat template: %w", err)
	}
	return &Prompts{summary: st, chat: ct, budget: budget, labels: names}, nil
}

// MustDefaultPrompts is the default configuration.
func MustDefaultPrompts() *Prompts {
	p, err := NewPrompts("", "", 0, nil)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompts) Budget() int { return p.budget }

// Label is the prompt wording for l.
func (p *Prompts) Label(l Level) string {
	if s, ok := p.labels[l]; ok {
		return s
	}
	return l.Label()
}

func (p *Prompts) Summary(level Level, title, text string) (string, error) {
	var b strings.Builder
	err := p.summary.Execute(&b, summaryData{
		Level:   p.Label(level),
		Title:   title,
		Content: Truncate(text, p.budget),
	})
	if err != nil {
		return "", fmt.Errorf("render summary prompt: %w", err)
	}
	return b.String(), nil
}

func (p *Prompts) Chat(title, summary, question string) (string, error) {
	var b strings.Builder
	err := p.chat.Execute(&b, chatData{Title: title, Summary: summary, Question: question})
	if err != nil {
		return "", fmt.Errorf("render chat prompt: %w", err)
	}
	return b.String(), nil
}

// Truncate keeps the first budget characters (runes) of text. Shorter text
// is returned unchanged.
func Truncate(text string, budget int) string {
	if budget <= 0 || len(text) <= budget {
		return text
	}
	n := 0
	for i := range text {
		if n == budget {
			return text[:i]
		}
		n++
	}
	return text
}
