package controllers

import (
	"net/http"
	"strconv"
	"time"

	"LenaAI/middleware"
	"LenaAI/models"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	defaultHistoryPage = 50
	maxHistoryPage     = 500
)

type chatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Chat runs one exchange. In open mode the caller names itself with user_id;
// in token mode the bearer token is handed to the chat service, which
// rejects it before touching storage.
func Chat(chat *svc.ChatService, tokenMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body chatRequest
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			badRequest(c, "invalid request")
			return
		}

		var (
			reply string
			err   error
		)
		if tokenMode {
			token, _ := middleware.BearerToken(c.GetHeader("Authorization"))
			reply, err = chat.HandleAuthenticatedChat(c.Request.Context(), token, body.Text)
		} else {
			reply, err = chat.HandleChat(c.Request.Context(), body.UserID, body.Text)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reply": reply})
	}
}

type turnView struct {
	ID        uint      `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func toTurnViews(msgs []models.Message) []turnView {
	out := make([]turnView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, turnView{ID: m.ID, Sender: m.Sender, Text: m.Text, CreatedAt: m.CreatedAt})
	}
	return out
}

// History lists the caller's latest turns, oldest first. Token mode expects
// AuthMiddleware in front of it.
func History(chat *svc.ChatService, tokenMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		externalID := c.Query("user_id")
		if tokenMode {
			externalID = middleware.CurrentUserID(c)
		}
		if externalID == "" {
			badRequest(c, "user_id is required")
			return
		}

		limit := defaultHistoryPage
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				badRequest(c, "limit must be a non-negative integer")
				return
			}
			limit = min(n, maxHistoryPage)
		}

		msgs, err := chat.History(c.Request.Context(), externalID, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": externalID, "messages": toTurnViews(msgs)})
	}
}
