package routes

import (
	"net/http"
	"time"

	"LenaAI/controllers"
	"LenaAI/middleware"
	svc "LenaAI/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	authRoutes "LenaAI/routes/auth"
	chatRoutes "LenaAI/routes/chat"
	profileRoutes "LenaAI/routes/profile"
	websocketRoutes "LenaAI/routes/websocket"
)

// Deps are the services the HTTP layer needs. Auth is nil in open mode,
// which also leaves out /register, /login, /logout and /profile.
type Deps struct {
	Chat        *svc.ChatService
	Auth        *svc.AuthService
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewRouter builds the engine with the common middleware chain and all routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logging(d.Logger),
		middleware.Metrics(),
		cors.New(corsConfig(d.CORSOrigins)),
	)
	RegisterRoutes(r, d)
	return r
}

// corsConfig allows every origin, without credentials, when none are listed.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", controllers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"msg": "not found", "error": "not_found"})
	})

	var auth svc.TokenAuthenticator
	if d.Auth != nil {
		auth = d.Auth
	}
	chatRoutes.Register(r, d.Chat, d.Limiter, auth)
	websocketRoutes.Register(r, d.Chat, d.Limiter, auth, d.CORSOrigins, d.Logger)

	if d.Auth == nil {
		return
	}
	authRoutes.RegisterPublic(r, d.Auth)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Auth))
	authRoutes.RegisterProtected(protected, d.Auth)
	profileRoutes.Register(protected, d.Chat)
}
