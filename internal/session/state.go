package session

import (
	"strings"
	"time"

	"github.com/thywilljoshua/study-companion/internal/study"
)

// Document is the uploaded course. It is replaced wholesale on upload.
type Document struct {
	Name       string    `json:"name"`
	Raw        []byte    `json:"-"`
	Text       string    `json:"text"`
	Pages      int       `json:"pages"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Title is the display name without its trailing .pdf extension.
func (d *Document) Title() string { return Title(d.Name) }

// Title strips a trailing ".pdf" (any case) from a file name.
func Title(name string) string {
	if len(name) >= 4 && strings.EqualFold(name[len(name)-4:], ".pdf") {
		return name[:len(name)-4]
	}
	return name
}

type Summary struct {
	Text      string      `json:"text"`
	Title     string      `json:"title"`
	Level     study.Level `json:"level"`
	Model     string      `json:"model,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Phase is the coarse position of a session in its lifecycle.
type Phase string

const (
	Idle        Phase = "idle"
	HasDocument Phase = "has_document"
	HasSummary  Phase = "has_summary"
)

// State is everything one session knows. The zero value is not ready for
// use; start from NewState.
type State struct {
	Document   *Document   `json:"document,omitempty"`
	Summary    *Summary    `json:"summary,omitempty"`
	Transcript []ChatTurn  `json:"transcript,omitempty"`
	Level      study.Level `json:"level"`
}

func NewState() *State {
	return &State{Level: study.Beginner}
}

// Blank reports whether s holds nothing a fresh state would not.
func (s *State) Blank() bool {
	return s.Document == nil && s.Summary == nil && len(s.Transcript) == 0 && s.Level == study.Beginner
}

func (s *State) Phase() Phase {
	switch {
	case s.Summary != nil:
		return HasSummary
	case s.Document != nil:
		return HasDocument
	default:
		return Idle
	}
}

// Clone returns a copy that shares nothing mutable with s. Documents and
// summaries are never modified in place, so their pointers are shared.
func (s *State) Clone() *State {
	c := *s
	if s.Transcript != nil {
		c.Transcript = append([]ChatTurn(nil), s.Transcript...)
	}
	return &c
}
