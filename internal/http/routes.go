package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	Service     string
	CORSOrigins []string
	// Limiter guards the credential and OTP endpoints. Nil disables limiting.
	Limiter Limiter
	// Metrics serves /metrics; defaults to the prometheus default gatherer.
	Metrics http.Handler
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Trace(cfg.Service))
	r.Use(RequestID())
	r.Use(AccessLog())
	r.Use(Metrics())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderRequestID},
			ExposeHeaders:    []string{HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metricsHandler))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/.well-known/jwks.json", h.JWKS)

	authed := Authenticate(h.Auth)
	limit := func(name string) gin.HandlerFunc { return RateLimit(cfg.Limiter, name) }

	api := r.Group("/api/auth")
	{
		api.POST("/register", limit("register"), h.Register)
		api.POST("/login", limit("login"), h.Login)
		api.POST("/logout", h.Logout)
		api.POST("/send-verify-otp", authed, limit("send-verify-otp"), h.SendVerifyOTP)
		api.POST("/verify-account", authed, limit("verify-account"), h.VerifyAccount)
		api.POST("/send-reset-otp", limit("send-reset-otp"), h.SendResetOTP)
		api.POST("/reset-password", limit("reset-password"), h.ResetPassword)
		api.GET("/is-auth", authed, h.IsAuth)
	}
	r.GET("/api/user/data", authed, h.UserData)

	return r
}
