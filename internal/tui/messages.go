package tui

import "github.com/thywilljoshua/study-companion/internal/session"

// UploadDoneMsg reports the end of a document upload.
type UploadDoneMsg struct {
	State *session.State
	Name  string
	Err   error
}

// SummaryDoneMsg reports the end of a summary generation.
type SummaryDoneMsg struct {
	State *session.State
	Err   error
}

// AnswerDoneMsg reports the end of a chat turn. State includes the
// question even when Err is set.
type AnswerDoneMsg struct {
	State *session.State
	Err   error
}

// ExportDoneMsg reports where the summary was written.
type ExportDoneMsg struct {
	Path string
	Err  error
}
