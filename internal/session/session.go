// Package session is the study session state machine: one handler per user
// event over an explicit State, plus the stores that keep states between
// requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/study-companion/internal/export"
	"github.com/thywilljoshua/study-companion/internal/ingest"
	"github.com/thywilljoshua/study-companion/internal/study"
)

var (
	ErrNoDocument = errors.New("no document uploaded")
	ErrNoSummary  = errors.New("no summary generated")
)

// Extractor turns raw PDF bytes into text.
type Extractor interface {
	Extract(raw []byte) (ingest.Result, error)
}

// Engine carries the services every session uses. It holds no session
// state and is safe for concurrent use.
type Engine struct {
	extractor  Extractor
	summarizer *study.Summarizer
	assistant  *study.Assistant
	model      string
	log        *zap.Logger
	now        func() time.Time
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithModel records the model id on generated summaries.
func WithModel(m string) Option { return func(e *Engine) { e.model = m } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func NewEngine(x Extractor, s *study.Summarizer, a *study.Assistant, opts ...Option) *Engine {
	e := &Engine{
		extractor:  x,
		summarizer: s,
		assistant:  a,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Open binds a state to the engine. A nil state starts a fresh session.
func (e *Engine) Open(st *State) *Session {
	if st == nil {
		st = NewState()
	}
	if !st.Level.Valid() {
		st.Level = study.Beginner
	}
	return &Session{eng: e, st: st}
}

// Session applies events to one State. It is not safe for concurrent use;
// callers serialize events (see Manager).
type Session struct {
	eng *Engine
	st  *State
}

// Snapshot is a copy of the current state for rendering.
func (s *Session) Snapshot() *State { return s.st.Clone() }

// Upload ingests a new document. On failure the previous state is kept.
// An existing summary is left in place and keeps its own title.
func (s *Session) Upload(name string, raw []byte) error {
	res, err := s.eng.extractor.Extract(raw)
	if err != nil {
		return err
	}
	s.st.Document = &Document{
		Name:       name,
		Raw:        raw,
		Text:       res.Text,
		Pages:      res.Pages,
		UploadedAt: s.eng.now(),
	}
	s.eng.log.Debug("document ingested",
		zap.String("name", name),
		zap.Int("pages", res.Pages),
		zap.Int("chars", len(res.Text)))
	return nil
}

func (s *Session) SetLevel(l study.Level) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", study.ErrUnknownLevel, l)
	}
	s.st.Level = l
	return nil
}

// Summarize generates a summary of the current document at the current
// level. A failure leaves any previous summary untouched.
func (s *Session) Summarize(ctx context.Context) error {
	doc := s.st.Document
	if doc == nil {
		return ErrNoDocument
	}
	level := s.st.Level
	start := s.eng.now()
	text, err := s.eng.summarizer.Summarize(ctx, doc.Text, level, doc.Title())
	if err != nil {
		return err
	}
	s.st.Summary = &Summary{
		Text:      text,
		Title:     doc.Title(),
		Level:     level,
		Model:     s.eng.model,
		CreatedAt: s.eng.now(),
	}
	s.eng.log.Info("summary generated",
		zap.String("title", doc.Title()),
		zap.String("level", string(level)),
		zap.Duration("took", s.eng.now().Sub(start)))
	return nil
}

// Ask appends the question to the transcript, then the answer. When the
// generation fails the question stays in the transcript without an answer.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", study.ErrEmptyQuestion
	}
	s.st.Transcript = append(s.st.Transcript, ChatTurn{Role: RoleUser, Content: question, CreatedAt: s.eng.now()})

	var ref *study.Reference
	if sum := s.st.Summary; sum != nil {
		ref = &study.Reference{Title: sum.Title, Summary: sum.Text}
	}
	answer, err := s.eng.assistant.Ask(ctx, ref, question)
	if err != nil {
		return "", err
	}
	s.st.Transcript = append(s.st.Transcript, ChatTurn{Role: RoleAssistant, Content: answer, CreatedAt: s.eng.now()})
	return answer, nil
}

func (s *Session) ClearChat() {
	s.st.Transcript = nil
}

// Reset drops the document, the summary and the transcript in one step.
// The selected level is kept.
func (s *Session) Reset() {
	*s.st = State{Level: s.st.Level}
}

// File is an exported summary ready for download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (s *Session) Export(f export.Format) (File, error) {
	sum := s.st.Summary
	if sum == nil {
		return File{}, ErrNoSummary
	}
	data, err := export.Render(sum.Title, sum.Text, f)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        export.FileName(sum.Title, f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}
