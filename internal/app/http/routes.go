package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authapi "booking-app/internal/api/auth"
	"booking-app/internal/api/users"
	authsvc "booking-app/internal/auth"
	"booking-app/internal/app/http/middleware"
	"booking-app/internal/metrics"
	"booking-app/internal/ratelimit"
)

// Deps are the collaborators the routes are wired to. Google may be nil.
type Deps struct {
	Auth     *authapi.Handler
	Google   *authapi.GoogleHandler
	Users    *users.Handler
	Sessions *authsvc.SessionCodec
	Limiter  ratelimit.Limiter
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// Ping reports whether the credential store is reachable.
	Ping func(ctx context.Context) error
}

// NewRouter builds the engine with recovery, request logging and CORS for corsOrigin.
func NewRouter(d Deps, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestContext(d.Logger, d.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// Passwords must reach the hasher byte for byte.
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware("password", "confirmPassword"))

	limited := middleware.RateLimit(d.Limiter, d.Logger, d.Metrics)

	public.POST("/register", d.Auth.Register)
	public.POST("/login", limited, d.Auth.Login)
	public.POST("/forget-password", limited, d.Auth.ForgetPassword)
	public.GET("/verify-token", d.Auth.VerifyToken)
	public.POST("/reset-password", d.Auth.ResetPassword)
	public.POST("/userdata", limited, d.Users.UserData)

	if d.Google != nil {
		public.GET("/auth/google", d.Google.Start)
		public.GET("/auth/google/callback", d.Google.Callback)
	}

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.Sessions))
	auth.GET("/me", d.Users.GetCurrentUser)
}
