package controllers

import (
	"net/http"

	"LenaAI/middleware"
	"LenaAI/models"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

func profileView(u *models.User) gin.H {
	return gin.H{
		"user_id":    u.ExternalID,
		"name":       u.DisplayName(),
		"created_at": u.CreatedAt,
	}
}

// Profile serves GET and PUT for the authenticated user. PUT only changes the
// display name.
func Profile(chat *svc.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		externalID := middleware.CurrentUserID(c)

		if c.Request.Method == http.MethodGet {
			user, err := chat.Profile(ctx, externalID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, profileView(user))
			return
		}

		var body struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request")
			return
		}
		user, err := chat.Rename(ctx, externalID, body.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profileView(user))
	}
}
