package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"engagerag/internal/domain"
	"engagerag/internal/history"
	"engagerag/internal/mockdata"
)

// SessionHeader carries the chat session id when the body has no user_id.
const SessionHeader = "X-Session-ID"

// maxMessageLen caps the length of a chat message.
const maxMessageLen = 4000

type handlers struct {
	engine  Answerer
	history history.Store
	log     *logrus.Logger
	version string
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type analyticsRequest struct {
	PostType  string `json:"post_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Metric    string `json:"metric"`
}

func sessionID(c *gin.Context, userID string) string {
	if id := strings.TrimSpace(userID); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	return ""
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": h.version, "engine": h.engine.Status()})
}

// chat handles POST /api/chat.
func (h *handlers) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	if len(msg) > maxMessageLen {
		respondError(c, http.StatusBadRequest, "invalid_request", "message exceeds maximum length")
		return
	}

	ctx := c.Request.Context()
	session := sessionID(c, req.UserID)
	if session == "" {
		session = uuid.New().String()
	}
	log := h.log.WithField("session_id", session)

	var prior []domain.Exchange
	if err := h.history.Append(ctx, session, domain.UserSaid(msg)); err != nil {
		log.WithError(err).Warn("append user turn")
	} else if recent, err := h.history.Recent(ctx, session); err != nil {
		log.WithError(err).Warn("read history")
	} else if len(recent) > 0 {
		prior = recent[:len(recent)-1]
	}

	answer := h.engine.Answer(ctx, msg, prior)

	if err := h.history.Append(ctx, session, domain.AssistantSaid(answer)); err != nil {
		log.WithError(err).Warn("append assistant turn")
	}
	c.JSON(http.StatusOK, chatResponse{Response: answer, SessionID: session})
}

// chatHistory handles GET /api/chat/history.
func (h *handlers) chatHistory(c *gin.Context) {
	session := sessionID(c, c.Query("user_id"))
	if session == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "user_id or "+SessionHeader+" is required")
		return
	}
	recent, err := h.history.Recent(c.Request.Context(), session)
	if err != nil {
		h.log.WithError(err).WithField("session_id", session).Error("read history")
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if recent == nil {
		recent = []domain.Exchange{}
	}
	c.JSON(http.StatusOK, gin.H{"history": recent})
}

// analytics handles POST /api/analytics. The body is optional.
func (h *handlers) analytics(c *gin.Context) {
	var req analyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	data, chart := mockdata.Analytics(req.PostType)
	c.JSON(http.StatusOK, gin.H{"data": data, "chart_url": chart})
}

func (h *handlers) recommendations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recommendations": mockdata.Recommendations(c.Query("post_type"))})
}

func (h *handlers) bestTimes(c *gin.Context) {
	if bt, ok := mockdata.BestTimeFor(c.Query("post_type")); ok {
		c.JSON(http.StatusOK, gin.H{"best_time": bt})
		return
	}
	c.JSON(http.StatusOK, gin.H{"best_times": mockdata.BestTimes()})
}

func (h *handlers) metricsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, mockdata.Summary())
}

func (h *handlers) upload(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Data uploaded and processed successfully"})
}
