package chat

import (
	"LenaAI/controllers"
	"LenaAI/middleware"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

// Register adds /chat and /history. A non-nil auth switches both to bearer
// token identity.
func Register(r *gin.Engine, chat *svc.ChatService, limiter *middleware.RateLimiter, auth svc.TokenAuthenticator) {
	tokenMode := auth != nil
	r.POST("/chat", limiter.Middleware(middleware.CallerKey(auth)), controllers.Chat(chat, tokenMode))

	if tokenMode {
		r.GET("/history", middleware.AuthMiddleware(auth), controllers.History(chat, true))
		return
	}
	r.GET("/history", controllers.History(chat, false))
}
