package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thywilljoshua/study-companion/internal/session"
	"github.com/thywilljoshua/study-companion/internal/study"
)

func (s *Server) index(c *gin.Context) {
	st, err := s.mgr.View(c.Request.Context(), sessionID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", s.newPageData(st, ""))
}

// event runs a form event. Success redirects back to the page; a failure
// renders the page with the error next to the current state.
func (s *Server) event(c *gin.Context, fn func(*session.Session) error) {
	if _, err := s.mgr.Do(c.Request.Context(), sessionID(c), fn); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) renderError(c *gin.Context, err error) {
	status, body := classify(err)
	s.logFailure(c, status, err)
	st, verr := s.mgr.View(c.Request.Context(), sessionID(c))
	if verr != nil {
		st = session.NewState()
	}
	c.HTML(status, "index.html", s.newPageData(st, body.Message))
}

func (s *Server) postDocument(c *gin.Context) {
	name, raw, err := s.readUpload(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.event(c, func(sess *session.Session) error { return sess.Upload(name, raw) })
}

func (s *Server) postLevel(c *gin.Context) {
	level, err := study.ParseLevel(c.PostForm("level"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.event(c, func(sess *session.Session) error { return sess.SetLevel(level) })
}

func (s *Server) postSummary(c *gin.Context) {
	ctx, cancel := s.generationContext(c)
	defer cancel()
	s.event(c, func(sess *session.Session) error { return sess.Summarize(ctx) })
}

func (s *Server) postChat(c *gin.Context) {
	question := c.PostForm("question")
	ctx, cancel := s.generationContext(c)
	defer cancel()
	s.event(c, func(sess *session.Session) error {
		_, err := sess.Ask(ctx, question)
		return err
	})
}

func (s *Server) postClearChat(c *gin.Context) {
	s.event(c, func(sess *session.Session) error {
		sess.ClearChat()
		return nil
	})
}

func (s *Server) postReset(c *gin.Context) {
	s.event(c, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

func (s *Server) pageExport(c *gin.Context) {
	f, err := s.export(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	sendFile(c, f)
}
