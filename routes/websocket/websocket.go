package websocket

import (
	"LenaAI/controllers"
	"LenaAI/middleware"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Register(r *gin.Engine, chat *svc.ChatService, limiter *middleware.RateLimiter, auth svc.TokenAuthenticator, origins []string, log zerolog.Logger) {
	r.GET("/ws/chat", limiter.Middleware(middleware.CallerKey(auth)), controllers.ChatWS(chat, auth, origins, log))
}
