package web

import (
	"html/template"
	"strings"
	"time"

	"github.com/thywilljoshua/study-companion/internal/export"
	"github.com/thywilljoshua/study-companion/internal/session"
	"github.com/thywilljoshua/study-companion/internal/study"
)

type documentView struct {
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Pages      int       `json:"pages"`
	Chars      int       `json:"chars"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type summaryView struct {
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Level      string    `json:"level"`
	LevelLabel string    `json:"level_label"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type turnView struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type stateView struct {
	Phase      string        `json:"phase"`
	Level      string        `json:"level"`
	Document   *documentView `json:"document"`
	Summary    *summaryView  `json:"summary"`
	Transcript []turnView    `json:"transcript"`
}

func newStateView(st *session.State) stateView {
	v := stateView{
		Phase:      string(st.Phase()),
		Level:      string(st.Level),
		Transcript: make([]turnView, 0, len(st.Transcript)),
	}
	if d := st.Document; d != nil {
		v.Document = &documentView{
			Name:       d.Name,
			Title:      d.Title(),
			Pages:      d.Pages,
			Chars:      len([]rune(d.Text)),
			UploadedAt: d.UploadedAt,
		}
	}
	if sm := st.Summary; sm != nil {
		v.Summary = &summaryView{
			Title:      sm.Title,
			Text:       sm.Text,
			Level:      string(sm.Level),
			LevelLabel: sm.Level.Label(),
			Model:      sm.Model,
			CreatedAt:  sm.CreatedAt,
		}
	}
	for _, t := range st.Transcript {
		v.Transcript = append(v.Transcript, turnView{Role: string(t.Role), Content: t.Content, CreatedAt: t.CreatedAt})
	}
	return v
}

type levelOption struct {
	ID       string
	Label    string
	Selected bool
}

// pageData feeds templates/index.html.
type pageData struct {
	State       stateView
	Levels      []levelOption
	Formats     []export.Format
	SummaryHTML template.HTML
	Error       string
	Model       string
}

func (s *Server) newPageData(st *session.State, errMsg string) pageData {
	d := pageData{
		State:   newStateView(st),
		Formats: export.Formats,
		Error:   errMsg,
		Model:   s.opts.Model,
	}
	for _, l := range study.Levels {
		d.Levels = append(d.Levels, levelOption{ID: string(l), Label: l.Label(), Selected: l == st.Level})
	}
	if st.Summary != nil {
		h, err := export.Markdown(st.Summary.Text)
		if err != nil {
			d.SummaryHTML = template.HTML(template.HTMLEscapeString(st.Summary.Text))
		} else {
			d.SummaryHTML = h
		}
	}
	return d
}

var templateFuncs = template.FuncMap{
	"upper": func(f export.Format) string { return strings.ToUpper(string(f)) },
	"clock": func(t time.Time) string { return t.Format("15:04") },
}
