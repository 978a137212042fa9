package web

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thywilljoshua/study-companion/internal/export"
	"github.com/thywilljoshua/study-companion/internal/session"
	"github.com/thywilljoshua/study-companion/internal/study"
)

type levelRequest struct {
	Level string `json:"level" binding:"required"`
}

type chatRequest struct {
	Question string `json:"question" binding:"required"`
}

type chatResponse struct {
	Answer string    `json:"answer"`
	State  stateView `json:"state"`
}

// run executes one event and answers with the resulting state.
func (s *Server) run(c *gin.Context, fn func(*session.Session) error) {
	st, err := s.mgr.Do(c.Request.Context(), sessionID(c), fn)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newStateView(st))
}

func (s *Server) apiSession(c *gin.Context) {
	s.run(c, func(*session.Session) error { return nil })
}

func (s *Server) apiUpload(c *gin.Context) {
	name, raw, err := s.readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.run(c, func(sess *session.Session) error { return sess.Upload(name, raw) })
}

func (s *Server) apiLevel(c *gin.Context) {
	var req levelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errBadRequest)
		return
	}
	level, err := study.ParseLevel(req.Level)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.run(c, func(sess *session.Session) error { return sess.SetLevel(level) })
}

func (s *Server) apiSummarize(c *gin.Context) {
	ctx, cancel := s.generationContext(c)
	defer cancel()
	s.run(c, func(sess *session.Session) error { return sess.Summarize(ctx) })
}

func (s *Server) apiAsk(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, study.ErrEmptyQuestion)
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()

	var answer string
	st, err := s.mgr.Do(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		answer, err = sess.Ask(ctx, req.Question)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{Answer: answer, State: newStateView(st)})
}

func (s *Server) apiClearChat(c *gin.Context) {
	s.run(c, func(sess *session.Session) error {
		sess.ClearChat()
		return nil
	})
}

func (s *Server) apiReset(c *gin.Context) {
	s.run(c, func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

func (s *Server) apiExport(c *gin.Context) {
	f, err := s.export(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	sendFile(c, f)
}

func (s *Server) export(c *gin.Context) (session.File, error) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		return session.File{}, err
	}
	var f session.File
	_, err = s.mgr.Do(c.Request.Context(), sessionID(c), func(sess *session.Session) error {
		var err error
		f, err = sess.Export(format)
		return err
	})
	return f, err
}

func sendFile(c *gin.Context, f session.File) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": f.Name})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, f.ContentType, f.Data)
}
