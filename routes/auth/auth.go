package auth

import (
	"LenaAI/controllers"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

// RegisterPublic registers public auth routes: /register, /login
func RegisterPublic(r *gin.Engine, auth *svc.AuthService) {
	r.POST("/register", controllers.Register(auth))
	r.POST("/login", controllers.Login(auth))
}

// RegisterProtected registers protected auth routes (e.g. logout)
func RegisterProtected(g *gin.RouterGroup, auth *svc.AuthService) {
	g.POST("/logout", controllers.Logout(auth))
}
