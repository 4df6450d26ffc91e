package controllers

import (
	"net/http"

	"LenaAI/middleware"
	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register accepts a form or JSON body.
func Register(auth *svc.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body credentials
		if err := c.ShouldBind(&body); err != nil {
			badRequest(c, "invalid request")
			return
		}
		if err := auth.Register(c.Request.Context(), body.Username, body.Password); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"msg": "User created", "username": body.Username})
	}
}

func Login(auth *svc.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body credentials
		if err := c.ShouldBind(&body); err != nil {
			badRequest(c, "invalid request")
			return
		}
		token, err := auth.Login(c.Request.Context(), body.Username, body.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
	}
}

// Logout revokes the bearer token validated by AuthMiddleware.
func Logout(auth *svc.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), c.GetString(middleware.ContextTokenKey)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
	}
}
