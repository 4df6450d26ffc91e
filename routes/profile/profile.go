package profile

import (
	"LenaAI/controllers"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

// Register registers protected profile routes on supplied router group
// expects the group to already have AuthMiddleware applied
func Register(g *gin.RouterGroup, chat *svc.ChatService) {
	g.GET("/profile", controllers.Profile(chat))
	g.PUT("/profile", controllers.Profile(chat))
}
