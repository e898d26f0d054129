package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liaozensiang/ebook-translater/internal/glossary"
	"github.com/liaozensiang/ebook-translater/internal/session"
)

// Every handler goes through the session store, which reads session.json
// afresh, so edits made by other processes are always visible.

func (s *Server) handleGetSession(c *gin.Context) {
	sess, err := s.sessions.Load()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleGetSegment(c *gin.Context) {
	seg, err := s.sessions.Segment(c.Param("id"))
	if err != nil {
		s.failLookup(c, err)
		return
	}
	c.JSON(http.StatusOK, seg)
}

type segmentUpdate struct {
	TargetText *string `json:"target_text"`
	// ZH is the field name older UI builds send.
	ZH       *string `json:"zh"`
	Approved bool    `json:"approved"`
}

func (s *Server) handleUpdateSegment(c *gin.Context) {
	id := c.Param("id")

	var req segmentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	text := req.TargetText
	if text == nil {
		text = req.ZH
	}

	var seg *session.Segment
	var err error
	if text != nil {
		if seg, err = s.sessions.UpdateTranslation(id, *text); err != nil {
			s.failLookup(c, err)
			return
		}
	}
	if req.Approved {
		if seg, err = s.sessions.Approve(id); err != nil {
			s.failLookup(c, err)
			return
		}
	}
	if seg == nil {
		// Nothing to change; still report a missing segment.
		if seg, err = s.sessions.Segment(id); err != nil {
			s.failLookup(c, err)
			return
		}
	}

	s.wsHub.BroadcastMessage(MessageTypeSegmentUpdated, seg)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTranslateSegment(c *gin.Context) {
	id := c.Param("id")

	text, err := s.translator.TranslateSegment(c.Request.Context(), s.sessions, id)
	if err != nil {
		s.failLookup(c, err)
		return
	}

	if seg, err := s.sessions.Segment(id); err == nil {
		s.wsHub.BroadcastMessage(MessageTypeSegmentUpdated, seg)
	}
	c.JSON(http.StatusOK, gin.H{"target_text": text, "zh": text})
}

func (s *Server) handleGetGlossary(c *gin.Context) {
	sess, err := s.sessions.Load()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	g := sess.Glossary
	if g == nil {
		g = glossary.Glossary{}
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleSaveGlossary(c *gin.Context) {
	var g glossary.Glossary
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Glossary must be a JSON object of strings"})
		return
	}
	if g == nil {
		g = glossary.Glossary{}
	}

	if err := s.sessions.SetGlossary(g); err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if s.config.GlossaryPath != "" {
		if err := g.Save(s.config.GlossaryPath); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
	}

	s.wsHub.BroadcastMessage(MessageTypeGlossaryUpdated, g)
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

type googleRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleGoogle(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}
	if s.mt == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Machine translation is not configured"})
		return
	}

	sess, err := s.sessions.Load()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	tgtLang := sess.TgtLang
	if tgtLang == "" {
		tgtLang = "Traditional Chinese"
	}

	text, err := s.mt.Translate(c.Request.Context(), req.Text, tgtLang)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target_text": text, "zh": text})
}

// failLookup answers 404 for unknown segments and 500 otherwise.
func (s *Server) failLookup(c *gin.Context, err error) {
	if errors.Is(err, session.ErrSegmentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Segment not found"})
		return
	}
	s.fail(c, http.StatusInternalServerError, err)
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	s.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, gin.H{"error": err.Error()})
}
